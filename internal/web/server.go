package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/winsuspend/winsuspend/internal/config"
	"github.com/winsuspend/winsuspend/internal/database"
	"github.com/winsuspend/winsuspend/internal/tracker"
)

type Server struct {
	handler *Handler
	server  *http.Server
	log     *zap.SugaredLogger
}

func NewServer(cfg *config.Config, repo *database.Repository, svc *tracker.Service, log *zap.SugaredLogger, customPort int) *Server {
	handler := NewHandler(cfg, repo, svc, log)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		handler: handler,
		server:  httpServer,
		log:     log,
	}
}

func (s *Server) Start() error {
	s.log.Infow("web server listening", "addr", "http://"+s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Infow("web server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
