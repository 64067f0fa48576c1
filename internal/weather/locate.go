package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agenda23/insightdash/internal/settings"
)

// Resolver guesses the machine's location when no location is stored. It
// stands in for a browser's geolocation prompt.
type Resolver interface {
	Locate(ctx context.Context) (settings.Location, error)
}

const ipLocateTimeout = 5 * time.Second

// IPResolver resolves the current location from the machine's public IP.
type IPResolver struct {
	// Endpoint defaults to the public ip-api service.
	Endpoint string
	Client   *http.Client
}

type ipLocateResponse struct {
	Status     string  `json:"status"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

func (r *IPResolver) Locate(ctx context.Context) (settings.Location, error) {
	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = "http://ip-api.com/json"
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, ipLocateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return settings.Location{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return settings.Location{}, fmt.Errorf("locating by IP: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return settings.Location{}, fmt.Errorf("IP locate API %d", resp.StatusCode)
	}

	var lr ipLocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return settings.Location{}, err
	}
	if lr.Status != "success" {
		return settings.Location{}, fmt.Errorf("IP locate failed: %s", lr.Status)
	}
	if !settings.ValidateLocation(lr.Lat, lr.Lon) {
		return settings.Location{}, fmt.Errorf("IP locate returned invalid coordinates")
	}

	city := lr.City
	if city == "" {
		city = "現在地"
	}
	region := lr.RegionName
	if region == "" {
		region = "現在地"
	}
	return settings.Location{
		CityName:   city,
		Prefecture: region,
		Latitude:   lr.Lat,
		Longitude:  lr.Lon,
	}, nil
}
