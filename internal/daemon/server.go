package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheus3301/eventd/internal/bus"
	"github.com/matheus3301/eventd/internal/config"
	"github.com/matheus3301/eventd/internal/dispatch"
)

// Server manages the HTTP server lifecycle for the dispatch daemon.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *zap.Logger
}

// NewServer creates an HTTP server bound to the configured address.
// The listener is claimed here so a bad address fails startup instead
// of a background goroutine.
func NewServer(p Params, cfg *config.Config, logger *zap.Logger, d *dispatch.Dispatcher, b *bus.Bus) (*Server, error) {
	addr := p.ListenAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(logger))

	h := &handlers{dispatcher: d, bus: b, streamBuf: cfg.StreamBuffer}
	h.register(engine)

	return &Server{
		httpServer: &http.Server{Handler: engine},
		listener:   listener,
		logger:     logger,
	}, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start begins serving HTTP requests. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.Addr()))
	if err := s.httpServer.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("http server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("error shutting down http server", zap.Error(err))
	}
}
