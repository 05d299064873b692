// Package http 对外提供报告查询、手动触发与实时推送的服务端
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server HTTP 服务器
type Server struct {
	server *http.Server
	hub    *Hub
	log    *zap.Logger
}

// NewServer 组装路由与中间件链
func NewServer(port int, origins []string, handlers *Handlers, hub *Hub, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	handlers.Register(mux, hub)

	chain := Chain(
		RecoveryMiddleware(log),
		LoggerMiddleware(log),
		CORSMiddleware(origins),
		TimeoutMiddleware(60*time.Second),
	)

	return &Server{
		server: &http.Server{
			Addr:        fmt.Sprintf(":%d", port),
			Handler:     chain(mux),
			ReadTimeout: 30 * time.Second,
			IdleTimeout: 120 * time.Second,
		},
		hub: hub,
		log: log,
	}
}

// Start 启动服务，阻塞直到服务器退出
func (s *Server) Start() error {
	if s.hub != nil {
		go s.hub.Run()
	}
	s.log.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Stop 优雅停机
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.hub != nil {
		s.hub.Stop()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
