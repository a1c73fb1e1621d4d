package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultEndpointsFile = "allowed_endpoints.yaml"
	probeTimeout         = 5 * time.Second
)

type endpointsFile struct {
	Endpoints []string `yaml:"endpoints"`
}

// LoadAllowedEndpoints reads the allow-listed endpoint hostnames the enclave
// is expected to reach.
func LoadAllowedEndpoints(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %v", path, err)
	}
	var f endpointsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", path, err)
	}
	return f.Endpoints, nil
}

// checkEndpoints probes every allow-listed endpoint and reports reachability
// per endpoint. A missing or unparsable endpoints file yields an empty map
// rather than an error: the health check itself must stay available.
func (s *AppState) checkEndpoints(ctx context.Context) map[string]bool {
	endpoints, err := LoadAllowedEndpoints(s.EndpointsFile)
	if err != nil {
		s.Logger.DebugIf("no allowed endpoints to check", zap.Error(err))
		return map[string]bool{}
	}

	client := &http.Client{Timeout: probeTimeout}
	status := make(map[string]bool, len(endpoints))
	for _, endpoint := range endpoints {
		reachable := probeEndpoint(ctx, client, endpoint)
		status[endpoint] = reachable
		s.Logger.DebugIf("checked endpoint",
			zap.String("endpoint", endpoint), zap.Bool("reachable", reachable))
	}
	return status
}

// probeEndpoint checks connectivity to one endpoint. AWS endpoints expose a
// /ping route and are judged by a "healthy" body; everything else is judged
// by HTTP status.
func probeEndpoint(ctx context.Context, client *http.Client, endpoint string) bool {
	target := "https://" + endpoint
	if isAWSEndpoint(endpoint) {
		target += "/ping"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if isAWSEndpoint(endpoint) {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if err != nil {
			return false
		}
		return strings.Contains(strings.ToLower(string(body)), "healthy")
	}
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func isAWSEndpoint(endpoint string) bool {
	return strings.Contains(endpoint, ".amazonaws.com")
}
