package indexing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectInitializer detects the workspace root the CLI and MCP server index
// when no --root is given
type ProjectInitializer struct {
	exists func(path string) bool
	isDir  func(path string) bool
}

// NewProjectInitializer creates a project initializer backed by the OS
func NewProjectInitializer() *ProjectInitializer {
	return &ProjectInitializer{
		exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
		isDir: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && info.IsDir()
		},
	}
}

// DetectProjectRoot checks if a path is likely a project root
// Returns (isProjectRoot, detectionMarker)
func (pi *ProjectInitializer) DetectProjectRoot(path string) (bool, string) {
	if path == "" || !pi.isDir(path) {
		return false, ""
	}

	for _, markers := range [][]string{ConfigMarkers, PrimaryProjectMarkers, SecondaryProjectMarkers} {
		for _, marker := range markers {
			if pi.exists(filepath.Join(path, marker)) {
				return true, marker
			}
		}
	}

	for _, dir := range SourceDirectoryNames {
		if pi.isDir(filepath.Join(path, filepath.FromSlash(dir))) {
			return true, dir
		}
	}

	return false, ""
}

// FindProjectRoot walks up the directory tree from startPath to find the project root.
//
// Config files are searched all the way up first, so a parent
// .mapperlink.kdl wins over the pom.xml of a nested Maven module. Other
// markers stop at the first directory that has one.
func (pi *ProjectInitializer) FindProjectRoot(startPath string) (string, string, error) {
	if startPath == "" {
		return "", "", errors.New("startPath cannot be empty")
	}

	currentPath := startPath
	for {
		for _, marker := range ConfigMarkers {
			if pi.exists(filepath.Join(currentPath, marker)) {
				return currentPath, marker, nil
			}
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}

	currentPath = startPath
	for {
		if isRoot, marker := pi.DetectProjectRoot(currentPath); isRoot {
			return currentPath, marker, nil
		}

		parentPath := filepath.Dir(currentPath)
		if parentPath == currentPath {
			break
		}
		currentPath = parentPath
	}

	return "", "", fmt.Errorf("no project root detected from path: %s", startPath)
}

// GetProjectRoot detects the project root starting from startPath, or from
// the working directory when startPath is empty.
func GetProjectRoot(startPath string) (string, string, error) {
	if startPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", "", fmt.Errorf("failed to get current working directory: %w", err)
		}
		startPath = cwd
	}

	abs, err := filepath.Abs(startPath)
	if err != nil {
		return "", "", err
	}
	return NewProjectInitializer().FindProjectRoot(abs)
}
