package geofence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/safetrail/sentinel-agent/internal/models"
)

// HTTPStore fetches geofences from the deployment's REST data store, a
// PostgREST-style endpoint exposing the geofences table.
type HTTPStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPStore creates a registry backed by the remote data store.
func NewHTTPStore(baseURL, apiKey string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the current geofence rows.
func (s *HTTPStore) Fetch(ctx context.Context) ([]models.GeofenceRegion, error) {
	url := s.baseURL + "/rest/v1/geofences?select=latitude,longitude,radius"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch geofences: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch geofences: status %d", resp.StatusCode)
	}

	var regions []models.GeofenceRegion
	if err := json.NewDecoder(resp.Body).Decode(&regions); err != nil {
		return nil, fmt.Errorf("decode geofences: %w", err)
	}

	return regions, nil
}
