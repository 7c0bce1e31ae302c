package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/plantspeak/internal/middleware"
	"anoa.com/plantspeak/internal/modules/user/repository"
	"anoa.com/plantspeak/internal/modules/user/service"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	tokens := session.NewTokens("test-secret", time.Hour)
	svc := service.NewUserService(repository.NewUserRepository(db, time.Second), nil, tokens, nil, 0, nil)
	h := NewUserHandler(svc)
	auth := middleware.NewAuthMiddleware(tokens, language.English)

	r := gin.New()
	r.Use(auth.Session())
	r.GET("/api/session", h.Session)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/profile/me", auth.RequireAuth(), h.GetCurrentProfile)
	r.PUT("/api/profile", auth.RequireAuth(), h.UpdateProfile)
	return r
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"view":"login"`)

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "asha", "password": "herbal1", "password_confirm": "herbal1", "name": "Asha",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "asha", "password": "herbal1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login.Data.AccessToken
	require.NotEmpty(t, token)

	w = doJSON(r, http.MethodGet, "/api/session", token, nil)
	assert.Contains(t, w.Body.String(), `"username":"asha"`)
	assert.Contains(t, w.Body.String(), `"view":"entry"`)

	w = doJSON(r, http.MethodPut, "/api/profile", token, gin.H{"community": "Gond"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/profile/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"community":"Gond"`)
	assert.Contains(t, w.Body.String(), `"contribution_count":0`)
}

func TestRegisterRejects(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "asha", "password": "herbal1", "password_confirm": "herbal2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := gin.H{"username": "asha", "password": "herbal1", "password_confirm": "herbal1"}
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/auth/register", "", body).Code)

	w = doJSON(r, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists.")
}

func TestProfileRequiresAuth(t *testing.T) {
	r := setupRouter(t)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/api/profile/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodGet, "/api/profile/me", "garbage", nil).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	r := setupRouter(t)
	body := gin.H{"username": "asha", "password": "herbal1", "password_confirm": "herbal1"}
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/api/auth/register", "", body).Code)

	w := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "asha", "password": "nope12"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")
}
