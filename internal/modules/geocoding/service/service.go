package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves place names and coordinates. Every lookup is a single
// attempt; any failure is reported as not found.
type Geocoder interface {
	NameToCoords(ctx context.Context, text string) (Coordinates, bool)
	CoordsToName(ctx context.Context, lat, lon float64) (string, bool)
	ApproximateLocation(ctx context.Context, ip string) (Coordinates, bool)
}

type Config struct {
	BaseURL   string
	IPBaseURL string
	Timeout   time.Duration
	UserAgent string
}

type nominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	ipBaseURL string
	userAgent string
	logger    *zap.Logger
}

func NewGeocoder(cfg Config, logger *zap.Logger) Geocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &nominatimGeocoder{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		ipBaseURL: strings.TrimRight(cfg.IPBaseURL, "/"),
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

func (g *nominatimGeocoder) NameToCoords(ctx context.Context, text string) (Coordinates, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Coordinates{}, false
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", "1")

	var places []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := g.getJSON(ctx, g.baseURL+"/search?"+q.Encode(), &places); err != nil {
		g.logger.Warn("forward geocoding failed", zap.String("query", text), zap.Error(err))
		return Coordinates{}, false
	}
	if len(places) == 0 {
		return Coordinates{}, false
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		g.logger.Warn("forward geocoding returned malformed coordinates", zap.String("query", text))
		return Coordinates{}, false
	}
	return Coordinates{Latitude: lat, Longitude: lon}, true
}

func (g *nominatimGeocoder) CoordsToName(ctx context.Context, lat, lon float64) (string, bool) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")

	var place struct {
		DisplayName string `json:"display_name"`
	}
	if err := g.getJSON(ctx, g.baseURL+"/reverse?"+q.Encode(), &place); err != nil {
		g.logger.Warn("reverse geocoding failed", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return "", false
	}
	if place.DisplayName == "" {
		return "", false
	}
	return place.DisplayName, true
}

// ApproximateLocation looks up the caller's rough position from its IP.
// Private or missing addresses let the service infer the address itself.
func (g *nominatimGeocoder) ApproximateLocation(ctx context.Context, ip string) (Coordinates, bool) {
	endpoint := g.ipBaseURL + "/json/"
	if parsed := net.ParseIP(ip); parsed != nil && !parsed.IsPrivate() && !parsed.IsLoopback() && !parsed.IsUnspecified() {
		endpoint = g.ipBaseURL + "/" + parsed.String() + "/json/"
	}

	var loc struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		Error     bool     `json:"error"`
	}
	if err := g.getJSON(ctx, endpoint, &loc); err != nil {
		g.logger.Warn("ip geolocation failed", zap.Error(err))
		return Coordinates{}, false
	}
	if loc.Error || loc.Latitude == nil || loc.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: *loc.Latitude, Longitude: *loc.Longitude}, true
}

func (g *nominatimGeocoder) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
