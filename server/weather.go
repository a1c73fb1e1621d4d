package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultWeatherBaseURL = "https://api.weatherapi.com/v1"

// WeatherRequest is the process_data payload: a location to look up.
type WeatherRequest struct {
	Location string `json:"location"`
}

// WeatherResponse is the signed payload. Field order is part of the
// canonical encoding, so it must never be reordered.
type WeatherResponse struct {
	Location    string `json:"location"`
	Temperature uint64 `json:"temperature"`
}

// WeatherClient fetches current conditions from the upstream weather API.
type WeatherClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewWeatherClient(apiKey string) *WeatherClient {
	return &WeatherClient{
		BaseURL:    defaultWeatherBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// weatherObservation mirrors the subset of the upstream response we consume.
type weatherObservation struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC            float64 `json:"temp_c"`
		LastUpdatedEpoch uint64  `json:"last_updated_epoch"`
	} `json:"current"`
}

// Current fetches current conditions for location. It returns the payload to
// sign together with the provider's last-updated time in milliseconds, which
// becomes the signed timestamp so verifiers can judge freshness of the
// observation itself, not of our request.
func (c *WeatherClient) Current(ctx context.Context, location string) (WeatherResponse, uint64, error) {
	endpoint := fmt.Sprintf("%s/current.json?key=%s&q=%s",
		c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return WeatherResponse{}, 0, fmt.Errorf("failed to build weather request: %v", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return WeatherResponse{}, 0, fmt.Errorf("failed to get weather response: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return WeatherResponse{}, 0, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var obs weatherObservation
	if err := json.NewDecoder(resp.Body).Decode(&obs); err != nil {
		return WeatherResponse{}, 0, fmt.Errorf("failed to parse weather response: %v", err)
	}

	name := obs.Location.Name
	if name == "" {
		name = "Unknown"
	}

	// The unsigned payload cannot represent sub-zero readings; they saturate
	// at 0. Converting a negative float directly would wrap.
	temp := obs.Current.TempC
	if temp < 0 {
		temp = 0
	}

	return WeatherResponse{
		Location:    name,
		Temperature: uint64(temp),
	}, obs.Current.LastUpdatedEpoch * 1000, nil
}
