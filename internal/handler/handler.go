// Package handler holds the helpers shared by the per-resource HTTP
// handlers in its subpackages.
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/middleware"
	"github.com/jwalitptl/ed-orders/pkg/errors"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// BindJSON decodes the request body into req. On failure it writes a 400
// and returns false.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return false
	}
	return true
}

// BindQuery is BindJSON for query parameters.
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid query parameters", err))
		return false
	}
	return true
}

// ClinicianID returns the session's clinician, or "" for anonymous calls.
func ClinicianID(c *gin.Context) string {
	if sess, ok := middleware.CurrentSession(c); ok {
		return sess.ClinicianID
	}
	return ""
}

// RespondWithPage slices items by the page and page_size query parameters.
func RespondWithPage[T any](c *gin.Context, items []T) {
	page, size := httputil.PageParams(c, DefaultPageSize, MaxPageSize)
	lo, hi := httputil.Paginate(len(items), page, size)
	httputil.RespondWithPagination(c, items[lo:hi], page, size, len(items))
}
