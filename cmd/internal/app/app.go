// Package app wires the tessera server runtime: config, logging, session
// storage and HTTP routes.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	authapi "tessera/cmd/internal/auth/api"
	"tessera/cmd/internal/auth/session"
	"tessera/cmd/security/token"
)

// App is the tessera server runtime: it owns HTTP server wiring and store lifecycle.
type App struct {
	cfg Config
	log Logger

	backend *backend
	reg     *prometheus.Registry
	handler http.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}
	hasher, err := NewTokenHasher(cfg)
	if err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, log, sessCfg, hasher, b)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return a, nil
}

func newApp(cfg Config, log Logger, sessCfg session.Config, hasher token.Hasher, b *backend) (*App, error) {
	var reg *prometheus.Registry
	var sessMetrics *session.Metrics
	var httpMetrics *HTTPMetrics
	if cfg.MetricsEnabled {
		reg = NewRegistry()
		sessMetrics = session.NewMetrics(reg)
		httpMetrics = NewHTTPMetrics(reg)
	}

	svc, err := session.NewService(sessCfg, b.store, hasher,
		session.WithLogger(log.With("component", "session")),
		session.WithMetrics(sessMetrics),
	)
	if err != nil {
		return nil, err
	}
	keys, err := sessCfg.ClaimKeys()
	if err != nil {
		return nil, err
	}
	codec, err := session.NewClaimCodec(keys, sessCfg.ClaimTTL)
	if err != nil {
		return nil, err
	}

	authHandler, err := authapi.NewHandler(log.With("component", "authapi"), authapi.LoadConfigFromEnv(), session.NewAuthenticator(svc, codec))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerHTTP(mux, log, cfg, b.ready, b.durable, reg, authHandler)

	var h http.Handler = mux
	h = WithSessionCache(h)
	h = WithMetrics(h, httpMetrics)
	h = WithRequestLogging(h, log)
	h = WithRequestID(h)

	return &App{
		cfg:     cfg,
		log:     log,
		backend: b,
		reg:     reg,
		handler: h,
	}, nil
}

// Handler returns the fully wrapped HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Close releases store resources. Run calls it on shutdown.
func (a *App) Close() error { return a.backend.Close() }

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "store", a.backend.kind)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		_ = a.Close()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.Close(); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
