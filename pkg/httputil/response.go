package httputil

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/ed-orders/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError names one field that failed request validation.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// PaginatedResponse wraps paginated data
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	RespondWithStatus(c, http.StatusOK, data)
}

func RespondWithStatus(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. AppErrors keep their status,
// validation failures become 400 and anything else is a 500.
func RespondWithError(c *gin.Context, err error) {
	body := &Error{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	}

	var verrs validator.ValidationErrors
	if appErr, ok := errors.As(err); ok {
		body.Code = appErr.StatusCode()
		body.Message = appErr.Message
		if stderrors.As(appErr.Err, &verrs) {
			body.Fields = fieldErrors(verrs)
		}
	} else if stderrors.As(err, &verrs) {
		body.Code = http.StatusBadRequest
		body.Message = "invalid request"
		body.Fields = fieldErrors(verrs)
	}

	c.JSON(body.Code, Response{
		Success: false,
		Error:   body,
	})
}

func fieldErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PaginatedResponse{
			Data: data,
			Pagination: Pagination{
				Page:      page,
				PageSize:  pageSize,
				Total:     total,
				TotalPage: totalPages,
			},
		},
	})
}

// PageParams reads page and page_size query parameters. Missing or invalid
// values fall back to page 1 and defaultSize; size is capped at maxSize.
func PageParams(c *gin.Context, defaultSize, maxSize int) (page, size int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size
}

// Paginate returns the [lo, hi) bounds of the requested page within total.
func Paginate(total, page, size int) (lo, hi int) {
	lo = (page - 1) * size
	if lo > total {
		lo = total
	}
	hi = lo + size
	if hi > total {
		hi = total
	}
	return lo, hi
}
