package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/mapperlink/internal/config"
	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
	"github.com/standardbeagle/mapperlink/testhelpers"
)

const (
	userMapperXML   = testhelpers.UserMapperXML
	userMapperJava  = testhelpers.UserMapperJava
	userServiceJava = testhelpers.UserServiceJava

	userMapperXMLPath  = testhelpers.UserMapperXMLPath
	userMapperJavaPath = testhelpers.UserMapperJavaPath
	userServicePath    = testhelpers.UserServicePath
	userNamespace      = testhelpers.UserNamespace
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	return testhelpers.WriteWorkspace(t, files)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	testhelpers.WriteFile(t, root, rel, content)
}

func uriOf(root, rel string) string {
	return pathutil.ToURI(filepath.Join(root, filepath.FromSlash(rel)))
}

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := testhelpers.NewTestConfigBuilder(root).WithGitignore().Build()
	require.NoError(t, config.ValidateConfig(cfg))
	return cfg
}

func standardWorkspace(t *testing.T) string {
	return writeWorkspace(t, testhelpers.UserWorkspace())
}

// memFS is an in-memory FileFinder and ContentReader
type memFS struct {
	mu    sync.Mutex
	files map[string]string
}

func newMemFS(files map[string]string) *memFS {
	m := &memFS{files: make(map[string]string)}
	for uri, text := range files {
		m.files[uri] = text
	}
	return m
}

func (m *memFS) set(uri, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[uri] = text
}

func (m *memFS) remove(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, uri)
}

func (m *memFS) FindFiles(_ context.Context, patterns []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exts []string
	for _, p := range patterns {
		exts = append(exts, filepath.Ext(p))
	}
	var out []string
	for uri := range m.files {
		for _, ext := range exts {
			if strings.HasSuffix(uri, ext) {
				out = append(out, uri)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memFS) ReadText(_ context.Context, uri string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.files[uri]
	if !ok {
		return "", mlerrors.NewFileError("read", uri, os.ErrNotExist)
	}
	return text, nil
}

// gatedFinder blocks FindFiles until release is closed
type gatedFinder struct {
	inner   FileFinder
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   int32
	mu      sync.Mutex
}

func newGatedFinder(inner FileFinder) *gatedFinder {
	return &gatedFinder{inner: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedFinder) FindFiles(ctx context.Context, patterns []string) ([]string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.inner.FindFiles(ctx, patterns)
}

func (g *gatedFinder) callCount() int32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
