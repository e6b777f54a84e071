// Package supervisor implements the process supervisor of spec.md §4.9:
// it performs the first synchronous load, then launches every service
// under a shared cancellation context and joins on exit, propagating the
// first service failure.
package supervisor

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/catmunchnet/registryd/internal/config"
	"github.com/catmunchnet/registryd/internal/dnsservice"
	"github.com/catmunchnet/registryd/internal/health"
	"github.com/catmunchnet/registryd/internal/loader"
	"github.com/catmunchnet/registryd/internal/refresh"
	"github.com/catmunchnet/registryd/internal/store"
	"github.com/catmunchnet/registryd/internal/whoisservice"
)

// Run wires the Loader, Store, DNS/WHOIS/readiness services and the
// refresh loop together and blocks until a termination signal arrives or
// a service fails. It returns the first non-nil error encountered.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := loader.New(cfg.GitPath, cfg.GitBranch, cfg.GitRepo, logger)
	s := store.New()

	logger.Info("performing initial registry load")
	if _, err := l.Update(); err != nil {
		return fmt.Errorf("supervisor: initial update: %w", err)
	}
	snap, err := l.Build()
	if err != nil {
		return fmt.Errorf("supervisor: initial build: %w", err)
	}
	s.Replace(snap)
	logger.Info("initial registry load complete", zap.Uint64("generation", snap.Generation))

	dnsSvc := dnsservice.New(s, cfg.TLD, logger)
	whoisSvc := whoisservice.New(s, cfg.TLD, cfg.NodeName, logger)

	var dnsAddr, whoisAddr string
	if len(cfg.DNS) > 0 {
		dnsAddr = cfg.DNS[0]
	}
	if len(cfg.WHOIS) > 0 {
		whoisAddr = cfg.WHOIS[0]
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.Handler(s, dnsAddr, whoisAddr, cfg.TLD, cfg.NodeName))
	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HealthCheckPort),
		Handler: mux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		refresh.Run(gctx, l, s, cfg.Interval, logger)
		return nil
	})

	g.Go(func() error {
		return dnsSvc.ListenAndServe(gctx, cfg.DNS)
	})

	g.Go(func() error {
		return whoisSvc.ListenAndServe(gctx, cfg.WHOIS)
	})

	g.Go(func() error {
		errCh := make(chan error, 1)
		go func() { errCh <- healthSrv.ListenAndServe() }()
		select {
		case <-gctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return healthSrv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("supervisor: health server exited: %w", err)
			}
			return nil
		}
	})

	logger.Info("all services started")
	if err := g.Wait(); err != nil {
		return fmt.Errorf("supervisor: %w", err)
	}
	logger.Info("all services stopped cleanly")
	return nil
}
