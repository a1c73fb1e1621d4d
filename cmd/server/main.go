// Command server runs the attested signing service: it generates the
// process-lifetime identity and serves attestation and signed weather
// lookups over TCP and, inside the enclave, over vsock.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tee-enclave/enclave"
	"tee-enclave/server"
	"tee-enclave/shared"

	"go.uber.org/zap"
)

func main() {
	logger, err := shared.NewLoggerFromEnv("server")
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	shared.LoadDotEnv(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiKey, err := shared.ResolveAPIKey(ctx, nil)
	if err != nil {
		logger.Critical("failed to resolve API key", zap.Error(err))
		os.Exit(1)
	}

	// Fatal, not best-effort: an unkeyed enclave cannot provide its core
	// guarantee, so there is nothing useful to serve.
	kp, err := enclave.GenerateIdentity()
	if err != nil {
		logger.Critical("failed to generate enclave identity", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("enclave identity generated", zap.String("public_key", kp.PublicKeyHex()))

	state := server.NewAppState(kp, logger, apiKey)
	cfg := server.ServeConfig{
		Port:      shared.GetEnvIntOrDefault("PORT", 3000),
		VsockPort: shared.GetEnvUint32OrDefault("VSOCK_PORT", 0),
	}

	if err := server.Serve(ctx, state, cfg); err != nil {
		logger.Critical("server failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
