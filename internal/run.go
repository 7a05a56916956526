package internal

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Run builds a server from opts and serves until SIGINT, SIGTERM or ctx
// cancellation, then shuts down gracefully.
func Run(ctx context.Context, opts ...Option) error {
	s, err := NewServer(opts...)
	if err != nil {
		return err
	}
	return s.Run(ctx)
}

// Run serves until SIGINT, SIGTERM or ctx cancellation. Shutdown waits up
// to the configured shutdown timeout, then runs the shutdown hooks. All
// errors are joined.
func (s *Server) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ctx)
	}()

	var errs []error
	select {
	case err := <-errCh:
		if err != nil {
			errs = append(errs, err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}

	for _, hook := range s.shutdownHooks {
		if err := hook(shutdownCtx); err != nil {
			errs = append(errs, err)
			s.logger.ErrorContext(shutdownCtx, "shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		s.logger.ErrorContext(shutdownCtx, "shutdown completed with errors")
		return errors.Join(errs...)
	}

	s.logger.InfoContext(shutdownCtx, "shutdown completed")
	return nil
}
