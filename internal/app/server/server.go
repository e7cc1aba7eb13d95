package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finderworks/x402-finder/internal/app/finder"
	"finderworks/x402-finder/internal/app/server/handlers"
	"finderworks/x402-finder/internal/config"
	"finderworks/x402-finder/internal/x402"
)

type Server struct {
	cfg      *config.Config
	router   *chi.Mux
	handlers *handlers.Handlers
}

func NewServer(cfg *config.Config, gate *x402.Gate, finderService *finder.Finder, logger *zap.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		handlers: handlers.NewHandlers(cfg, gate, finderService, logger),
	}

	srv.registerRoutes(gate)
	return srv
}

func (s *Server) registerRoutes(gate *x402.Gate) {
	s.router.Use(gate.Middleware)

	s.router.Get("/", s.handlers.Root)
	s.router.Get("/health", s.handlers.Health)
	s.router.Get("/payment-info", s.handlers.PaymentInfo)
	s.router.Post("/find", s.handlers.Find)
}

// Handler exposes the routed handler chain, gate included.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	return http.ListenAndServe(fmt.Sprintf(":%s", s.cfg.Server.Port), s.router)
}
