package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ed-orders/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondWithError(c, err)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestRespondWithError_AppError(t *testing.T) {
	code, resp := respond(t, fmt.Errorf("failed to get order: %w", errors.NotFound("order", nil)))

	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "order not found", resp.Error.Message)
	assert.Equal(t, http.StatusNotFound, resp.Error.Code)
}

func TestRespondWithError_Validation(t *testing.T) {
	type req struct {
		PatientMRN string `validate:"required"`
	}
	verr := validator.New().Struct(req{})
	require.Error(t, verr)

	code, resp := respond(t, verr)
	assert.Equal(t, http.StatusBadRequest, code)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, "PatientMRN", resp.Error.Fields[0].Field)
	assert.Equal(t, "required", resp.Error.Fields[0].Rule)
}

func TestRespondWithError_Unknown(t *testing.T) {
	code, resp := respond(t, fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", resp.Error.Message)
}

func TestPageParams(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=2&page_size=500", nil)

	page, size := PageParams(c, 20, 100)
	assert.Equal(t, 2, page)
	assert.Equal(t, 100, size)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=x", nil)
	page, size = PageParams(c, 20, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
}

func TestPaginate(t *testing.T) {
	lo, hi := Paginate(45, 3, 20)
	assert.Equal(t, 40, lo)
	assert.Equal(t, 45, hi)

	lo, hi = Paginate(5, 4, 20)
	assert.Equal(t, 5, lo)
	assert.Equal(t, 5, hi)
}
