package patient

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/handler"
	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

type Service interface {
	GetPatient(ctx context.Context, mrn string) (*model.Patient, error)
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	History(ctx context.Context, mrn string) ([]model.TestRecord, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:mrn", h.GetPatient)
		patients.GET("/:mrn/history", h.GetHistory)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	patients, err := h.service.ListPatients(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	p, err := h.service.GetPatient(c.Request.Context(), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

// GetHistory returns the records the duplicate check runs against.
func (h *Handler) GetHistory(c *gin.Context) {
	history, err := h.service.History(c.Request.Context(), c.Param("mrn"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}
