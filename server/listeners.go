package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"tee-enclave/shared"

	"github.com/mdlayher/vsock"
	"go.uber.org/zap"
)

const (
	vsockRetryDelay = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

// ServeConfig selects the listeners. VsockPort 0 disables the vsock
// listener; it is only meaningful inside the enclave, where the host proxy
// forwards traffic over the virtio socket.
type ServeConfig struct {
	Port      int
	VsockPort uint32
}

// Serve runs the service on a TCP listener and, when configured, a vsock
// listener sharing the same handler. It blocks until ctx is cancelled or a
// listener fails, then shuts down gracefully.
func Serve(ctx context.Context, state *AppState, cfg ServeConfig) error {
	srv := &http.Server{
		Handler:           SetupRoutes(state),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	errChan := make(chan error, 2)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %v", cfg.Port, err)
	}
	state.Logger.Info("listening", zap.Int("port", cfg.Port))
	go func() {
		errChan <- srv.Serve(ln)
	}()

	if cfg.VsockPort != 0 {
		go func() {
			vln, err := retryListenVsock(ctx, cfg.VsockPort, state.Logger)
			if err != nil {
				errChan <- err
				return
			}
			if vln == nil {
				return // shutdown requested during retry
			}
			state.Logger.Info("listening on vsock", zap.Uint32("port", cfg.VsockPort))
			errChan <- srv.Serve(vln)
		}()
	}

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		state.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// retryListenVsock keeps trying to bind the vsock port. Early in enclave
// boot the virtio device can lag behind the service start, so failures here
// are expected and retried rather than fatal.
func retryListenVsock(ctx context.Context, port uint32, logger *shared.Logger) (net.Listener, error) {
	for {
		ln, err := vsock.Listen(port, nil)
		if err == nil {
			return ln, nil
		}
		logger.Error("failed to listen on vsock port, retrying",
			zap.Uint32("port", port), zap.Duration("retry_in", vsockRetryDelay), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(vsockRetryDelay):
		}
	}
}
