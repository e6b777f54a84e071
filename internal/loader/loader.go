// Package loader pulls registry objects from a versioned upstream git
// repository and assembles a new Snapshot from them, per spec.md §4.3.
// Git transport is handled by go-git/go-git (a pure-Go stand-in for the
// original implementation's libgit2 binding); object parsing uses yaml.v3
// against the typed structs in internal/resource.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/catmunchnet/registryd/internal/resource"
	"github.com/catmunchnet/registryd/internal/snapshot"
)

// Loader mirrors an upstream git repository onto local disk and builds
// Snapshots from the object files it contains.
type Loader struct {
	gitPath   string
	gitBranch string
	gitRepo   string
	logger    *zap.Logger

	generation uint64
}

// New returns a Loader configured to mirror gitRepo's gitBranch into
// gitPath.
func New(gitPath, gitBranch, gitRepo string, logger *zap.Logger) *Loader {
	return &Loader{
		gitPath:   gitPath,
		gitBranch: gitBranch,
		gitRepo:   gitRepo,
		logger:    logger,
	}
}

// Update ensures the local mirror reflects the upstream branch's current
// tip, per spec.md §4.3 steps 1-3. It returns changed=true only if the
// mirror's contents moved (a fresh clone always reports changed=true).
func (l *Loader) Update() (changed bool, err error) {
	branchRef := plumbing.NewBranchReferenceName(l.gitBranch)

	if _, statErr := os.Stat(l.gitPath); errors.Is(statErr, os.ErrNotExist) {
		l.logger.Info("cloning registry mirror", zap.String("repo", l.gitRepo), zap.String("path", l.gitPath))
		_, err := git.PlainClone(l.gitPath, false, &git.CloneOptions{
			URL:           l.gitRepo,
			ReferenceName: branchRef,
			SingleBranch:  true,
		})
		if err != nil {
			return false, fmt.Errorf("loader: clone %s: %w", l.gitRepo, err)
		}
		return true, nil
	}

	repo, err := git.PlainOpen(l.gitPath)
	if err != nil {
		return false, fmt.Errorf("loader: open mirror at %s: %w", l.gitPath, err)
	}

	localRef, err := repo.Reference(branchRef, true)
	if err != nil {
		return false, fmt.Errorf("loader: cannot find local branch %s: %w", l.gitBranch, err)
	}
	localHash := localRef.Hash()

	err = repo.Fetch(&git.FetchOptions{RemoteName: "origin", Force: true})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("loader: fetch %s: %w", l.gitBranch, err)
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", l.gitBranch), true)
	if err != nil {
		return false, fmt.Errorf("loader: cannot find remote-tracking branch %s: %w", l.gitBranch, err)
	}
	remoteHash := remoteRef.Hash()

	if remoteHash == localHash {
		return false, nil
	}

	newRef := plumbing.NewHashReference(branchRef, remoteHash)
	if err := repo.Storer.SetReference(newRef); err != nil {
		return false, fmt.Errorf("loader: update local branch ref: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("loader: open worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteHash, Mode: git.HardReset}); err != nil {
		return false, fmt.Errorf("loader: hard reset to %s: %w", remoteHash, err)
	}

	return true, nil
}

// objectKindDirs maps upstream subdirectory names to the parse-and-add
// step run against each regular file inside.
func (l *Loader) objectKindDirs(b *snapshot.Builder) map[string]func(data []byte) error {
	return map[string]func(data []byte) error{
		"autnum": func(data []byte) error {
			var a resource.Autnum
			if err := yaml.Unmarshal(data, &a); err != nil {
				return err
			}
			b.AddAutnum(a)
			return nil
		},
		"domain": func(data []byte) error {
			var d resource.Domain
			if err := yaml.Unmarshal(data, &d); err != nil {
				return err
			}
			b.AddDomain(d)
			return nil
		},
		"inetnum": func(data []byte) error {
			var n resource.Inetnum
			if err := yaml.Unmarshal(data, &n); err != nil {
				return err
			}
			b.AddInetnum(n)
			return nil
		},
		"inet6num": func(data []byte) error {
			var n resource.Inet6num
			if err := yaml.Unmarshal(data, &n); err != nil {
				return err
			}
			b.AddInet6num(n)
			return nil
		},
		"route": func(data []byte) error {
			var r resource.Route
			if err := yaml.Unmarshal(data, &r); err != nil {
				return err
			}
			b.AddRoute(r)
			return nil
		},
		"route6": func(data []byte) error {
			var r resource.Route6
			if err := yaml.Unmarshal(data, &r); err != nil {
				return err
			}
			b.AddRoute6(r)
			return nil
		},
	}
}

// Build walks every object kind subdirectory of the local mirror, parses
// each non-hidden regular file, and assembles a new Snapshot. Any parse
// error aborts the whole build per spec.md §4.3/§7 ("a parse error on any
// object aborts the build").
func (l *Loader) Build() (snap *snapshot.Snapshot, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			snap = nil
			err = fmt.Errorf("loader: aborting build, invalid object triggered %v", rec)
		}
	}()

	l.generation++
	b := snapshot.NewBuilder(l.generation)

	for kind, parse := range l.objectKindDirs(b) {
		dir := filepath.Join(l.gitPath, kind)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s directory: %w", kind, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("loader: read %s: %w", path, err)
			}
			if err := parse(data); err != nil {
				return nil, fmt.Errorf("loader: parse %s: %w", path, err)
			}
		}
	}

	return b.Build(), nil
}
