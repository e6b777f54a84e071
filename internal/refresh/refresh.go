// Package refresh implements the periodic loader-to-store pipeline of
// spec.md §4.4: every interval, ask the loader whether upstream moved, and
// if so rebuild and publish a Snapshot.
package refresh

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/catmunchnet/registryd/internal/snapshot"
	"github.com/catmunchnet/registryd/internal/store"
)

// Loader is the subset of loader.Loader the refresh loop depends on,
// narrowed to an interface so tests can substitute a fake instead of a
// real git mirror.
type Loader interface {
	Update() (changed bool, err error)
	Build() (*snapshot.Snapshot, error)
}

// Run executes one Loader.Update/Build/Store.Replace cycle immediately,
// then repeats every interval until ctx is cancelled. Cancellation is
// checked immediately rather than after the next full interval, per
// spec.md §4.4's "sleep is cancellable" requirement.
func Run(ctx context.Context, l Loader, s *store.Store, interval time.Duration, logger *zap.Logger) {
	tick(l, s, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(l, s, logger)
		}
	}
}

func tick(l Loader, s *store.Store, logger *zap.Logger) {
	changed, err := l.Update()
	if err != nil {
		logger.Warn("upstream fetch failed, keeping current snapshot", zap.Error(err))
		return
	}
	if !changed {
		logger.Debug("no upstream change")
		return
	}
	snap, err := l.Build()
	if err != nil {
		logger.Warn("snapshot build failed, keeping current snapshot", zap.Error(err))
		return
	}
	s.Replace(snap)
	logger.Info("published new snapshot", zap.Uint64("generation", snap.Generation))
}
