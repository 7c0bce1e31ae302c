package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGeocoder(t *testing.T, handler http.HandlerFunc) Geocoder {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeocoder(Config{
		BaseURL:   srv.URL,
		IPBaseURL: srv.URL,
		Timeout:   200 * time.Millisecond,
		UserAgent: "PlantSpeakApp/1.0",
	}, nil)
}

func TestNameToCoords(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Pune", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "PlantSpeakApp/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`[{"lat":"18.5204","lon":"73.8567","display_name":"Pune"}]`))
	})

	coords, ok := g.NameToCoords(context.Background(), "Pune")
	assert.True(t, ok)
	assert.InDelta(t, 18.5204, coords.Latitude, 1e-9)
	assert.InDelta(t, 73.8567, coords.Longitude, 1e-9)
}

func TestCoordsToName(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "18.5204", r.URL.Query().Get("lat"))
		_, _ = w.Write([]byte(`{"display_name":"Pune, Maharashtra, India"}`))
	})

	name, ok := g.CoordsToName(context.Background(), 18.5204, 73.8567)
	assert.True(t, ok)
	assert.Equal(t, "Pune, Maharashtra, India", name)
}

func TestFailuresAreNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{not json`)) }},
		{"no results", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`[]`)) }},
		{"slow upstream", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			_, _ = w.Write([]byte(`[{"lat":"1","lon":"2"}]`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGeocoder(t, tt.handler)
			_, ok := g.NameToCoords(context.Background(), "Pune")
			assert.False(t, ok)
		})
	}
}

func TestSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, ok := g.CoordsToName(context.Background(), 1, 2)
	assert.False(t, ok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestApproximateLocation(t *testing.T) {
	var gotPath atomic.Value
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = w.Write([]byte(`{"latitude":12.97,"longitude":77.59}`))
	})

	coords, ok := g.ApproximateLocation(context.Background(), "8.8.8.8")
	assert.True(t, ok)
	assert.Equal(t, "/8.8.8.8/json/", gotPath.Load())
	assert.InDelta(t, 12.97, coords.Latitude, 1e-9)

	_, ok = g.ApproximateLocation(context.Background(), "192.168.1.10")
	assert.True(t, ok)
	assert.Equal(t, "/json/", gotPath.Load())
}

func TestApproximateLocationRateLimited(t *testing.T) {
	g := newTestGeocoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	})

	_, ok := g.ApproximateLocation(context.Background(), "8.8.8.8")
	assert.False(t, ok)
}
