package duplicate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/internal/repository/memory"
	"github.com/jwalitptl/ed-orders/internal/seed"
	duplicateservice "github.com/jwalitptl/ed-orders/internal/service/duplicate"
)

func setupRouter(now time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	data := seed.Load(now)
	checker := duplicateservice.NewService(duplicateservice.DefaultPolicy(), memory.NewHistoryFromResults(data.Results), nil, nil).
		WithClock(func() time.Time { return now })
	r := gin.New()
	NewHandler(checker).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/duplicate-check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheck_ExtendedWindowForSpecialTest(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	r := setupRouter(now)

	w := post(r, `{"patient_mrn":"MRN-1002","tests":["Blood Culture","CBC"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": {
			"duplicate_test_names": ["Blood Culture", "CBC"],
			"most_recent_match_id": "res-2006",
			"most_recent_match_at": "2026-03-14T08:00:00Z",
			"has_duplicates": true
		}
	}`, w.Body.String())
}

func TestCheck_NoHistory(t *testing.T) {
	r := setupRouter(time.Now())

	w := post(r, `{"patient_mrn":"MRN-9999","tests":["CBC"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"duplicate_test_names":[]`)
	assert.Contains(t, w.Body.String(), `"has_duplicates":false`)
	assert.NotContains(t, w.Body.String(), "most_recent_match_at")
}

func TestCheck_RequiresTests(t *testing.T) {
	r := setupRouter(time.Now())

	assert.Equal(t, http.StatusBadRequest, post(r, `{"patient_mrn":"MRN-1001","tests":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, `{"tests":["CBC"]}`).Code)
}
