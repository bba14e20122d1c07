package indexing

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/mapperlink/internal/config"
	"github.com/standardbeagle/mapperlink/internal/debug"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
)

// FileFinder enumerates candidate mapper files. Results are file:// URIs.
type FileFinder interface {
	FindFiles(ctx context.Context, patterns []string) ([]string, error)
}

// WorkspaceFinder walks the project root and matches root-relative slash
// paths against the requested globs. Exclude globs, include globs and
// .gitignore rules prune the walk.
type WorkspaceFinder struct {
	config    *config.Config
	gitignore *config.GitignoreParser
}

// NewWorkspaceFinder creates a finder for cfg.Project.Root. A .gitignore at
// the root is honored when cfg.Index.RespectGitignore is set.
func NewWorkspaceFinder(cfg *config.Config) *WorkspaceFinder {
	wf := &WorkspaceFinder{config: cfg}
	if cfg.Index.RespectGitignore {
		gp := config.NewGitignoreParser()
		if err := gp.LoadGitignore(cfg.Project.Root); err != nil {
			debug.LogIndexing("gitignore not loaded from %s: %v\n", cfg.Project.Root, err)
		} else {
			wf.gitignore = gp
		}
	}
	return wf
}

// FindFiles returns the URIs of every file under the root matching at least
// one pattern, sorted for stable scan order.
func (wf *WorkspaceFinder) FindFiles(ctx context.Context, patterns []string) ([]string, error) {
	root := wf.config.Project.Root
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	var uris []string
	visited := make(map[string]bool)

	// dir is the logical path URIs are built from; the walk itself runs on
	// its resolved target since WalkDir does not descend into a symlink root.
	var walk func(dir, relBase string) error
	walk = func(dir, relBase string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return err
		}
		if visited[real] {
			return nil
		}
		visited[real] = true

		return filepath.WalkDir(real, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, an unreadable root is fatal
				if path == real {
					return err
				}
				debug.LogIndexing("walk: skipping %s: %v\n", path, err)
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path == real {
				return nil
			}

			local, relErr := filepath.Rel(real, path)
			if relErr != nil {
				return nil
			}
			logical := filepath.Join(dir, local)
			rel := filepath.ToSlash(filepath.Join(relBase, local))

			if d.Type()&fs.ModeSymlink != 0 {
				if !wf.config.Index.FollowSymlinks {
					return nil
				}
				info, statErr := os.Stat(path)
				if statErr != nil {
					return nil
				}
				if info.IsDir() {
					if wf.ShouldSkipDir(rel) {
						return nil
					}
					if err := walk(logical, rel); err != nil && ctx.Err() != nil {
						return err
					}
					return nil
				}
			} else if d.IsDir() {
				if wf.ShouldSkipDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if wf.Matches(rel, patterns) {
				uris = append(uris, pathutil.ToURI(logical))
			}
			return nil
		})
	}

	if err := walk(root, ""); err != nil {
		return nil, err
	}

	sort.Strings(uris)
	return uris, nil
}

// ShouldSkipDir reports whether a root-relative directory is excluded
func (wf *WorkspaceFinder) ShouldSkipDir(rel string) bool {
	if matchAny(wf.config.Exclude, rel) || matchAny(wf.config.Exclude, rel+"/") {
		return true
	}
	return wf.gitignore != nil && wf.gitignore.ShouldIgnore(rel, true)
}

// Matches reports whether a root-relative file path is a candidate for
// patterns after exclude, include and .gitignore filtering.
func (wf *WorkspaceFinder) Matches(rel string, patterns []string) bool {
	if !matchAny(patterns, rel) {
		return false
	}
	if matchAny(wf.config.Exclude, rel) {
		return false
	}
	if len(wf.config.Include) > 0 && !matchAny(wf.config.Include, rel) {
		return false
	}
	if wf.gitignore != nil && wf.gitignore.ShouldIgnore(rel, false) {
		return false
	}
	return true
}

// RelativePath converts an absolute path to the slash form globs are
// matched against. ok is false for paths outside the root.
func (wf *WorkspaceFinder) RelativePath(path string) (string, bool) {
	rel := pathutil.ToRelative(path, wf.config.Project.Root)
	if filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
