// README: API server; owns the http.Server and shuts it down when the context ends.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownGrace = 10 * time.Second

type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr string, deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run blocks until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.logger.Info("shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
