package location

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"
)

// GoogleGeolocationProvider uses the Google Maps API to get location data.
type GoogleGeolocationProvider struct {
	client *maps.Client // Maps API client for making geolocation requests
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string) (*GoogleGeolocationProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no maps API key configured", ErrPermissionDenied)
	}

	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeolocationProvider{
		client: c,
	}, nil
}

// Authorize verifies the provider has a usable API client. The key itself is
// validated by the first geolocation call.
func (g *GoogleGeolocationProvider) Authorize() error {
	if g.client == nil {
		return ErrPermissionDenied
	}
	return nil
}

// GetLocation retrieves the device's location using Google Maps Geolocation API.
func (g *GoogleGeolocationProvider) GetLocation() (Location, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wifiAPs, err := getWiFiAccessPoints(ctx)
	if err != nil {
		return Location{}, err
	}

	cellTowers, err := getCellTowers(ctx, 0)
	if err != nil {
		// WiFi plus IP is usually enough for a fix; a modem-less device
		// should not fail the whole cycle.
		cellTowers = nil
	}

	req := &maps.GeolocationRequest{
		ConsiderIP:       true,
		WiFiAccessPoints: wifiAPs,
		CellTowers:       cellTowers,
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Location{}, err
	}

	return Location{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  resp.Accuracy,
	}, nil
}

// Close releases the provider.
func (g *GoogleGeolocationProvider) Close() error {
	return nil
}
