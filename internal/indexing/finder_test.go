package indexing

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceFinder_MatchesGlobs(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		userMapperXMLPath:  userMapperXML,
		userMapperJavaPath: userMapperJava,
		userServicePath:    userServiceJava,
		"src/main/java/com/acme/dao/OrderDao.java": "package com.acme.dao;\npublic interface OrderDao {}\n",
		"target/classes/mapper/UserMapper.xml":     userMapperXML,
		"node_modules/x/FooMapper.xml":             userMapperXML,
		"generated/GenMapper.xml":                  userMapperXML,
		".gitignore":                               "generated/\n",
	})
	cfg := testConfig(t, root)
	finder := NewWorkspaceFinder(cfg)

	xml, err := finder.FindFiles(context.Background(), cfg.Mappers.XMLGlobs)
	require.NoError(t, err)
	assert.Equal(t, []string{uriOf(root, userMapperXMLPath)}, xml,
		"build output, node_modules and gitignored files are pruned")

	java, err := finder.FindFiles(context.Background(), cfg.Mappers.JavaGlobs)
	require.NoError(t, err)
	assert.Equal(t, []string{
		uriOf(root, "src/main/java/com/acme/dao/OrderDao.java"),
		uriOf(root, userMapperJavaPath),
	}, java)
}

func TestWorkspaceFinder_GitignoreDisabled(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		"generated/GenMapper.xml": userMapperXML,
		".gitignore":              "generated/\n",
	})
	cfg := testConfig(t, root)
	cfg.Index.RespectGitignore = false

	found, err := NewWorkspaceFinder(cfg).FindFiles(context.Background(), []string{"**/*Mapper.xml"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestWorkspaceFinder_Include(t *testing.T) {
	root := writeWorkspace(t, map[string]string{
		"module-a/src/AMapper.xml": userMapperXML,
		"module-b/src/BMapper.xml": userMapperXML,
	})
	cfg := testConfig(t, root)
	cfg.Include = []string{"module-b/**"}

	found, err := NewWorkspaceFinder(cfg).FindFiles(context.Background(), []string{"**/*Mapper.xml"})
	require.NoError(t, err)
	assert.Equal(t, []string{uriOf(root, "module-b/src/BMapper.xml")}, found)
}

func TestWorkspaceFinder_MissingRoot(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "nope"))
	_, err := NewWorkspaceFinder(cfg).FindFiles(context.Background(), []string{"**/*.xml"})
	assert.Error(t, err)
}

func TestWorkspaceFinder_Cancelled(t *testing.T) {
	root := standardWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkspaceFinder(testConfig(t, root)).FindFiles(ctx, []string{"**/*.xml"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkspaceFinder_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	shared := writeWorkspace(t, map[string]string{
		"SharedMapper.xml":   userMapperXML,
		"sub/DeepMapper.xml": userMapperXML,
	})
	root := writeWorkspace(t, map[string]string{"app/AppMapper.xml": userMapperXML})
	require.NoError(t, os.Symlink(shared, filepath.Join(root, "shared")))
	// a cycle back to the root must not loop
	require.NoError(t, os.Symlink(root, filepath.Join(root, "app", "loop")))

	cfg := testConfig(t, root)
	found, err := NewWorkspaceFinder(cfg).FindFiles(context.Background(), []string{"**/*Mapper.xml"})
	require.NoError(t, err)
	assert.Equal(t, []string{uriOf(root, "app/AppMapper.xml")}, found)

	cfg.Index.FollowSymlinks = true
	found, err = NewWorkspaceFinder(cfg).FindFiles(context.Background(), []string{"**/*Mapper.xml"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		uriOf(root, "app/AppMapper.xml"),
		uriOf(root, "shared/SharedMapper.xml"),
		uriOf(root, "shared/sub/DeepMapper.xml"),
	}, found)
}

func TestWorkspaceFinder_RelativePath(t *testing.T) {
	root := t.TempDir()
	finder := NewWorkspaceFinder(testConfig(t, root))

	rel, ok := finder.RelativePath(filepath.Join(root, "src", "A.xml"))
	assert.True(t, ok)
	assert.Equal(t, "src/A.xml", rel)

	_, ok = finder.RelativePath(filepath.Dir(root))
	assert.False(t, ok)
}
