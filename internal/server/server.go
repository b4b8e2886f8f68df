package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"orgregistry/internal/config"
	"orgregistry/internal/metrics"
	"orgregistry/internal/middleware"
	"orgregistry/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	log      zerolog.Logger
	router   *gin.Engine
	mongo    *mongo.Client
	store    *repository.Store
	services *Services
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	store, client, err := InitRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics(prometheus.NewRegistry())
	services, err := InitServices(cfg, store, m)
	if err != nil {
		if client != nil {
			_ = client.Disconnect(context.Background())
		}
		return nil, err
	}
	handlers := InitHandlers(services, store)

	return &Server{
		cfg:      cfg,
		log:      log,
		router:   setupRouter(log, handlers, services, m),
		mongo:    client,
		store:    store,
		services: services,
	}, nil
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Services exposes the wired services
func (s *Server) Services() *Services {
	return s.services
}

// Close disconnects MongoDB client
func (s *Server) Close() error {
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.mongo.Disconnect(ctx)
	}
	return nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: config.DefaultReadHeaderTimeout,
		MaxHeaderBytes:    8 * 1024,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().
			Str("addr", srv.Addr).
			Str("store", s.cfg.StoreType).
			Msg("organization registry listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func setupRouter(log zerolog.Logger, h *Handlers, s *Services, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	r.Use(gin.Recovery(), middleware.RequestLogger(log), m.Middleware())

	r.GET("/healthz", h.Health.Healthz)
	r.GET("/version", h.Health.Version)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	org := r.Group("/org")
	{
		org.POST("/create", h.Org.Create)
		org.GET("/:name", h.Org.Get)
		org.PUT("/:name", h.Org.Update)
		org.DELETE("/:name", h.Org.Delete)
	}

	admin := r.Group("/admin")
	{
		admin.POST("/login", h.Auth.Login)
		admin.GET("/me", middleware.RequireAdmin(s.Tokens), h.Auth.Me)
	}

	return r
}
