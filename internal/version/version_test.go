package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullInfo(t *testing.T) {
	info := FullInfo()
	assert.True(t, strings.HasPrefix(info, "mapperlink "+Version))
	assert.Contains(t, info, BuildID())
}

func TestGet(t *testing.T) {
	bi := Get()
	assert.Equal(t, Version, bi.Version)
	assert.NotEmpty(t, bi.Commit)
	assert.NotEmpty(t, bi.BuildDate)
	assert.Equal(t, runtime.Version(), bi.GoVersion, "test binaries embed build info")
	assert.Len(t, bi.BuildID, 16)
}

func TestBuildIDStable(t *testing.T) {
	id := BuildID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, BuildID())
}
