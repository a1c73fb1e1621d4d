package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tee-enclave/enclave"

	"go.uber.org/zap"
)

// maxObservationAge bounds how old a provider observation may be before the
// enclave refuses to sign it: a signature over stale external data is worse
// than no signature.
const maxObservationAge = time.Hour

// GetAttestationResponse carries the hex-encoded attestation document.
type GetAttestationResponse struct {
	Attestation string `json:"attestation"`
}

// HealthCheckResponse reports the enclave public key and per-endpoint
// reachability of the allow-listed endpoints.
type HealthCheckResponse struct {
	PK              string          `json:"pk"`
	EndpointsStatus map[string]bool `json:"endpoints_status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *AppState) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, "Pong!")
}

func (s *AppState) handleGetAttestation(w http.ResponseWriter, r *http.Request) {
	logger := s.Logger.WithRequest(RequestID(r.Context()))
	logger.Info("get attestation called")

	doc, err := s.Attest(s.Keypair.PublicKey())
	if err != nil {
		logger.Error("attestation request failed", zap.Error(err))
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, GetAttestationResponse{Attestation: hex.EncodeToString(doc)})
}

func (s *AppState) handleProcessData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logger := s.Logger.WithRequest(RequestID(r.Context()))

	var req enclave.ProcessDataRequest[WeatherRequest]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	payload, lastUpdatedMS, err := s.Weather.Current(r.Context(), req.Payload.Location)
	if err != nil {
		logger.Error("weather lookup failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	if staleObservation(lastUpdatedMS, uint64(time.Now().UnixMilli())) {
		logger.DebugIf("rejected stale observation", zap.Uint64("last_updated_ms", lastUpdatedMS))
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "weather API timestamp is too old"})
		return
	}

	signed, err := enclave.ToSignedResponse(s.Keypair, payload, lastUpdatedMS, enclave.ScopeWeather)
	if err != nil {
		logger.Error("failed to sign response", zap.Error(err))
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, signed)
}

func (s *AppState) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthCheckResponse{
		PK:              s.Keypair.PublicKeyHex(),
		EndpointsStatus: s.checkEndpoints(r.Context()),
	})
}

// staleObservation reports whether an observation last updated at
// lastUpdatedMS is too old to sign at nowMS. An observation exactly
// maxObservationAge old is still signable; one millisecond past is not.
func staleObservation(lastUpdatedMS, nowMS uint64) bool {
	return lastUpdatedMS+uint64(maxObservationAge/time.Millisecond) < nowMS
}

// writeError maps the core's error taxonomy onto HTTP statuses so callers
// can tell hardware trouble apart from internal encoding failures.
func (s *AppState) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, enclave.ErrHardwareUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, enclave.ErrUnexpectedResponse):
		status = http.StatusBadGateway
	case errors.Is(err, enclave.ErrEncoding):
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
