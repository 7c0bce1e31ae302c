package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/plantspeak/internal/modules/geocoding/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubGeocoder struct{ found bool }

func (s stubGeocoder) NameToCoords(context.Context, string) (service.Coordinates, bool) {
	return service.Coordinates{Latitude: 18.52, Longitude: 73.85}, s.found
}

func (s stubGeocoder) CoordsToName(context.Context, float64, float64) (string, bool) {
	return "Pune", s.found
}

func (s stubGeocoder) ApproximateLocation(context.Context, string) (service.Coordinates, bool) {
	return service.Coordinates{Latitude: 18.52, Longitude: 73.85}, s.found
}

func setupRouter(found bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewGeoHandler(stubGeocoder{found: found})
	r := gin.New()
	r.GET("/api/geo/search", h.Search)
	r.GET("/api/geo/reverse", h.Reverse)
	r.GET("/api/geo/ip", h.FromIP)
	return r
}

func TestGeoHandler(t *testing.T) {
	tests := []struct {
		name     string
		found    bool
		path     string
		wantCode int
		wantBody string
	}{
		{"search found", true, "/api/geo/search?q=Pune", http.StatusOK, `"found":true`},
		{"search not found is still 200", false, "/api/geo/search?q=Nowhere", http.StatusOK, `"found":false`},
		{"search without query", true, "/api/geo/search", http.StatusBadRequest, `"error"`},
		{"reverse found", true, "/api/geo/reverse?lat=18.52&lon=73.85", http.StatusOK, `"location":"Pune"`},
		{"reverse bad latitude", true, "/api/geo/reverse?lat=north&lon=73.85", http.StatusBadRequest, `"error"`},
		{"reverse out of range", true, "/api/geo/reverse?lat=91&lon=0", http.StatusBadRequest, `"error"`},
		{"ip", true, "/api/geo/ip", http.StatusOK, `"latitude":18.52`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			setupRouter(tt.found).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
