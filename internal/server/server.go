// Package server assembles the HTTP server behind `formset serve`.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formset/components/formsetapi"
	"github.com/goliatone/go-formset/internal/config"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/renderers/vanilla"
)

// Server wires the formset component, static assets and middleware onto a chi
// router.
type Server struct {
	cfg    config.Config
	router chi.Router
	http   *http.Server
	logger *zap.Logger
	routes []string
}

// New builds a server for the given forms. A nil logger is replaced by a nop
// logger.
func New(cfg config.Config, forms []model.Form, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer, err := vanilla.New(vanilla.WithDocument(true))
	if err != nil {
		return nil, fmt.Errorf("server: vanilla renderer: %w", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(AccessLog(logger))
	router.Use(middleware.Recoverer)
	router.Use(Compression)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	routes, err := formsetapi.RegisterRoutes(router, cfg.BasePath,
		formsetapi.WithWildcard("*"),
		formsetapi.WithForms(forms...),
		formsetapi.WithRenderer(renderer),
		formsetapi.WithMaxBodyBytes(cfg.MaxBodyBytes),
		formsetapi.WithLogger(logger.Named("formsetapi")),
	)
	if err != nil {
		return nil, err
	}

	if assets := strings.TrimRight(cfg.AssetsPath, "/"); assets != "" {
		router.Handle(assets+"/*", http.StripPrefix(assets+"/", http.FileServerFS(vanilla.AssetsFS())))
		routes = append(routes, assets+"/*")
	}

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
		routes: routes,
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Routes lists the patterns registered by the formset component and assets.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening",
			zap.String("addr", ln.Addr().String()),
			zap.Strings("routes", s.routes),
		)
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server shutting down")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
