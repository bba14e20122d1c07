// Package pathutil converts between file paths, file:// URIs and
// root-relative display paths.
//
// The index keys every document by its file:// URI. User-facing output
// (CLI and MCP) shows paths relative to the workspace root instead.
package pathutil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const fileScheme = "file"

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/ws/src/main/java/UserMapper.java", "/ws") → "src/main/java/UserMapper.java"
//   - ToRelative("/other/Foo.java", "/ws") → "/other/Foo.java" (outside root)
//   - ToRelative("src/Foo.java", "/ws") → "src/Foo.java" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	// Outside the root the absolute path is clearer
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToURI converts a file path to a file:// URI. Relative paths are made
// absolute against the working directory first.
func ToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	// Windows drive paths need a leading slash: file:///C:/x
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: fileScheme, Path: slashed}
	return u.String()
}

// FromURI converts a file:// URI back to a native path. Input without a
// scheme is treated as a path and returned cleaned.
func FromURI(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		if uri == "" {
			return "", fmt.Errorf("empty uri")
		}
		return filepath.Clean(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri %q: %w", uri, err)
	}
	if u.Scheme != fileScheme {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file uri %q not supported", uri)
	}

	p := u.Path
	// /C:/x → C:/x
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// DisplayPath renders a URI as a root-relative path for output. URIs that
// cannot be parsed are returned unchanged.
func DisplayPath(uri, rootDir string) string {
	p, err := FromURI(uri)
	if err != nil {
		return uri
	}
	return filepath.ToSlash(ToRelative(p, rootDir))
}
