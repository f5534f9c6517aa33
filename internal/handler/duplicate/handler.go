package duplicate

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/handler"
	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

type Checker interface {
	Check(ctx context.Context, mrn string, candidates []string) model.DuplicateFinding
}

type Handler struct {
	checker Checker
}

func NewHandler(checker Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/duplicate-check", h.Check)
}

type checkResponse struct {
	model.DuplicateFinding
	HasDuplicates bool `json:"has_duplicates"`
}

// Check runs the duplicate check without creating a draft, so the order
// form can warn while the clinician is still picking tests.
func (h *Handler) Check(c *gin.Context) {
	var req model.DuplicateCheckRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	finding := h.checker.Check(c.Request.Context(), req.PatientMRN, req.Tests)
	if finding.DuplicateTestNames == nil {
		finding.DuplicateTestNames = []string{}
	}
	httputil.RespondWithSuccess(c, checkResponse{
		DuplicateFinding: finding,
		HasDuplicates:    finding.HasDuplicates(),
	})
}
