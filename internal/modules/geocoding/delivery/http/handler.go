package handler

import (
	"net/http"
	"strconv"
	"strings"

	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/modules/geocoding/service"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/response"
	"github.com/gin-gonic/gin"
)

type GeoHandler struct {
	geocoder service.Geocoder
}

func NewGeoHandler(geocoder service.Geocoder) *GeoHandler {
	return &GeoHandler{geocoder: geocoder}
}

func (h *GeoHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.ResponseError(c, apperror.ErrInvalidInput)
		return
	}

	coords, found := h.geocoder.NameToCoords(c.Request.Context(), q)
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "latitude": coords.Latitude, "longitude": coords.Longitude})
}

func (h *GeoHandler) Reverse(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		response.ResponseError(c, apperror.ErrInvalidInput)
		return
	}

	name, found := h.geocoder.CoordsToName(c.Request.Context(), lat, lon)
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "location": name})
}

func (h *GeoHandler) FromIP(c *gin.Context) {
	coords, found := h.geocoder.ApproximateLocation(c.Request.Context(), c.ClientIP())
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "latitude": coords.Latitude, "longitude": coords.Longitude})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"found": false, "message": response.T(c, i18n.MsgNoLocation)})
}
