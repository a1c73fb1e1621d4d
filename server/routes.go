package server

import "net/http"

// SetupRoutes wires the service endpoints onto a mux wrapped with the
// request id middleware.
func SetupRoutes(state *AppState) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", state.handlePing)
	mux.HandleFunc("/get_attestation", state.handleGetAttestation)
	mux.HandleFunc("/process_data", state.handleProcessData)
	mux.HandleFunc("/health_check", state.handleHealthCheck)
	return withRequestID(state.Logger, mux)
}
