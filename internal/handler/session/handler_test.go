package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/internal/middleware"
	"github.com/jwalitptl/ed-orders/internal/model"
	sessionservice "github.com/jwalitptl/ed-orders/internal/service/session"
)

func serve(r *gin.Engine, method, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.HeaderSessionToken, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := sessionservice.NewService(time.Hour, time.Hour)
	r := gin.New()
	r.Use(middleware.Session(svc))
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, `{"name":"Dr. Patel"}`, "").Code)

	w := serve(r, http.MethodPost, `{"clinician_id":"dr-patel","name":"Dr. Patel","role":"physician"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data model.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.Token)

	w = serve(r, http.MethodGet, "", created.Data.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"clinician_id":"dr-patel"`)

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "", created.Data.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "", created.Data.Token).Code)
}
