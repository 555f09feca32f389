// Package location resolves the submitter's position into the free-text
// location stored on a request. Detection and reverse geocoding are both
// optional: either may fail and the submission degrades to coordinates or
// manual entry.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Fix is one position report from a provider. Address is empty when only
// coordinates are known.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
	Address   string
}

// Provider detects the submitter's current position. Implementations may fail
// or be denied; both are reported as an error.
type Provider interface {
	Detect(ctx context.Context) (*Fix, error)
}

// ErrUnavailable indicates the provider could not produce a position. It is
// never fatal to a submission: the caller falls back to manual entry.
var ErrUnavailable = errors.New("location unavailable")

// Static is a fixed-position provider used for manual coordinates and tests.
type Static struct {
	Fix *Fix
	Err error
}

// Detect implements Provider.
func (s Static) Detect(context.Context) (*Fix, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Fix == nil {
		return nil, ErrUnavailable
	}
	f := *s.Fix
	return &f, nil
}

// CoordinateText renders a coordinate-only fallback location.
func CoordinateText(lat, lon float64) string {
	return fmt.Sprintf("Lat: %s, Lon: %s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))
}

// Geocoder resolves coordinates into a postal address.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

const defaultNominatimBase = "https://nominatim.openstreetmap.org"

// Nominatim reverse-geocodes against a Nominatim endpoint with a bounded
// request timeout.
type Nominatim struct {
	base      string
	userAgent string
	client    *http.Client
}

// NewNominatim constructs a geocoder. An empty base uses the public endpoint.
func NewNominatim(base, userAgent string) *Nominatim {
	if base == "" {
		base = defaultNominatimBase
	}
	if userAgent == "" {
		userAgent = "relieftrack"
	}
	return &Nominatim{
		base:      base,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Reverse implements Geocoder.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.base+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: unexpected status %d", resp.StatusCode)
	}
	var payload struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if payload.DisplayName == "" {
		return "", fmt.Errorf("reverse geocode: no address for %f,%f", lat, lon)
	}
	return payload.DisplayName, nil
}

// Resolve turns a detected position into the location text stored on a
// request. Address resolution failures fall back to coordinate text; provider
// failures surface ErrUnavailable so the caller can ask for manual entry.
func Resolve(ctx context.Context, p Provider, g Geocoder) (string, error) {
	if p == nil {
		return "", ErrUnavailable
	}
	fix, err := p.Detect(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if fix.Address != "" {
		return fix.Address, nil
	}
	if g != nil {
		if addr, err := g.Reverse(ctx, fix.Latitude, fix.Longitude); err == nil {
			return addr, nil
		}
	}
	return CoordinateText(fix.Latitude, fix.Longitude), nil
}
