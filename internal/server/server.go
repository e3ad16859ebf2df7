// Package server запускает HTTP-сервер SpeakShift с graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StopFunc освобождает ресурс после остановки HTTP-сервера.
type StopFunc func(ctx context.Context) error

// Server: HTTP-сервер и хуки, выполняемые после его остановки.
type Server struct {
	httpServer      *http.Server
	logger          *zap.SugaredLogger
	shutdownTimeout time.Duration

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
	stops []StopFunc
}

func New(addr string, handler http.Handler, logger *zap.SugaredLogger, shutdownTimeout time.Duration) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		ready:           make(chan struct{}),
	}
}

// OnShutdown регистрирует хук. Хуки выполняются в порядке регистрации.
func (s *Server) OnShutdown(fn StopFunc) {
	s.mu.Lock()
	s.stops = append(s.stops, fn)
	s.mu.Unlock()
}

// Addr возвращает адрес слушателя после старта, иначе nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Ready закрывается, когда сервер начал принимать соединения.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Run обслуживает запросы до отмены ctx, затем останавливает сервер
// и выполняет хуки. Запросы в обработке получают shutdownTimeout на завершение.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Starting server", "addr", ln.Addr().String())
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	close(s.ready)

	var serveErr error
	select {
	case <-ctx.Done():
		s.logger.Infow("Shutting down server")
	case serveErr = <-errCh:
		if serveErr != nil {
			serveErr = fmt.Errorf("http server: %w", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	errs := []error{serveErr}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("graceful shutdown: %w", err))
	}

	s.mu.Lock()
	stops := append([]StopFunc(nil), s.stops...)
	s.mu.Unlock()
	for _, stop := range stops {
		if err := stop(shutdownCtx); err != nil {
			s.logger.Errorw("shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
	}

	s.logger.Infow("Server stopped")
	return errors.Join(errs...)
}
