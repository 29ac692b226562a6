package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/spf13/cobra"

	"github.com/petermazzocco/interior-admin/internal/access"
	"github.com/petermazzocco/interior-admin/internal/auth"
	"github.com/petermazzocco/interior-admin/internal/blogs"
	"github.com/petermazzocco/interior-admin/internal/catalog"
	"github.com/petermazzocco/interior-admin/internal/config"
	"github.com/petermazzocco/interior-admin/internal/handlers"
	"github.com/petermazzocco/interior-admin/internal/imaging"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/internal/metrics"
)

type loadFunc func() (*config.Config, logger.Logger, error)

func serveCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(logger.ContextWithLogger(ctx, log), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	repo, closeRepo, err := openRepository(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Database.Driver, err)
	}
	defer closeRepo()

	assets, err := openAssets(ctx, cfg.Assets)
	if err != nil {
		return fmt.Errorf("failed to set up asset store: %w", err)
	}

	publisher, closePublisher, err := openPublisher(cfg.NATS)
	if err != nil {
		return fmt.Errorf("failed to connect to nats: %w", err)
	}
	defer closePublisher()

	m := metrics.New()
	gate := access.NewGate()
	sync := catalog.New(repo, assets,
		catalog.WithGate(gate),
		catalog.WithPreparer(imaging.Preparer{MaxWidth: cfg.Assets.MaxWidth}),
		catalog.WithPublisher(publisher),
		catalog.WithRecorder(m),
	)
	resolver := access.NewResolver(repo)
	gen := blogs.NewGenerator(cfg.Blogs.GeneratorURL, cfg.Blogs.Timeout)

	store := auth.NewStore(cfg.Auth.SessionSecret, cfg.Auth.SessionMaxAge, cfg.Server.Prod)
	baseURL := strings.TrimRight(cfg.Server.BaseURL, "/")
	auth.UseGoogle(cfg.Auth.GoogleKey, cfg.Auth.GoogleSecret, baseURL+"/auth/google/callback")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/auth/{provider}", handlers.BeginAuthHandler)
	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		handlers.UserLoginHandler(w, r, store, resolver, sync, baseURL+"/")
	})
	r.Post("/logout/{provider}", func(w http.ResponseWriter, r *http.Request) {
		handlers.LogoutHandler(w, r, store, sync)
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.UserMiddleware(store))
		r.Use(httprate.Limit(
			cfg.Server.RateLimit,
			cfg.Server.RateWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		))
		handlers.MountCatalog(r, sync, gate, gen)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "addr", cfg.Server.Addr, "store", cfg.Database.Driver, "assets", cfg.Assets.Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger puts a logger tagged with the request id into the context.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := log.With("request_id", middleware.GetReqID(r.Context()))
			next.ServeHTTP(w, r.WithContext(logger.ContextWithLogger(r.Context(), l)))
		})
	}
}
