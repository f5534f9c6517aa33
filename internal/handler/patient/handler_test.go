package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/internal/repository/memory"
	"github.com/jwalitptl/ed-orders/internal/seed"
	patientservice "github.com/jwalitptl/ed-orders/internal/service/patient"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	data := seed.Load(time.Now())
	svc := patientservice.NewService(
		memory.NewPatientRepository(data.Patients),
		memory.NewHistoryFromResults(data.Results),
	)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListPatients_SortedAndFiltered(t *testing.T) {
	r := setupRouter()

	w := get(r, "/api/v1/patients?assigned_to=dr-chen")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Data []model.Patient `json:"data"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Data, 2)
	assert.Equal(t, "MRN-1002", resp.Data.Data[0].MRN)
	assert.Equal(t, "MRN-1001", resp.Data.Data[1].MRN)
}

func TestGetPatient(t *testing.T) {
	r := setupRouter()

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/patients/MRN-1004").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/patients/MRN-9999").Code)
}

func TestGetHistory_UnknownPatientIsEmpty(t *testing.T) {
	r := setupRouter()

	w := get(r, "/api/v1/patients/MRN-9999/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())

	w = get(r, "/api/v1/patients/MRN-1001/history")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "res-2002")
}
