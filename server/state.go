// Package server is the application glue around the enclave core: an HTTP
// service exposing attestation, signed weather lookups and a connectivity
// health check, reachable over TCP and optionally over vsock when running
// inside the enclave behind a host proxy.
package server

import (
	"tee-enclave/enclave"
	"tee-enclave/shared"
)

// AppState is shared read-only across all request handlers. The identity is
// generated once at startup and never mutated, so concurrent signing and
// attestation need no locking.
type AppState struct {
	Keypair *enclave.EphemeralKeypair
	Logger  *shared.Logger
	Weather *WeatherClient

	// EndpointsFile is the allow-listed endpoints YAML consulted by the
	// health check.
	EndpointsFile string

	// Attest produces an attestation document for a public key. Replaceable
	// in tests; defaults to the NSM-backed implementation.
	Attest func(publicKey []byte) ([]byte, error)
}

// NewAppState wires the default collaborators around the generated identity.
func NewAppState(kp *enclave.EphemeralKeypair, logger *shared.Logger, apiKey string) *AppState {
	return &AppState{
		Keypair:       kp,
		Logger:        logger,
		Weather:       NewWeatherClient(apiKey),
		EndpointsFile: defaultEndpointsFile,
		Attest:        enclave.Attest,
	}
}
