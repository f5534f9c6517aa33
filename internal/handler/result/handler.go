package result

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/handler"
	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/errors"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

type Service interface {
	Get(ctx context.Context, id string) (*model.LabResult, error)
	List(ctx context.Context, filters *model.ResultFilters) ([]*model.LabResult, error)
	Classify(value interface{}, refRange string) model.ResultFlag
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	results := r.Group("/results")
	{
		results.GET("", h.List)
		results.GET("/:id", h.Get)
		results.POST("/classify", h.Classify)
	}
}

func (h *Handler) List(c *gin.Context) {
	var filters model.ResultFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	results, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, results)
}

func (h *Handler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

type classifyResponse struct {
	Flag     model.ResultFlag `json:"flag"`
	Abnormal bool             `json:"abnormal"`
}

func (h *Handler) Classify(c *gin.Context) {
	var req model.ClassifyRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	if req.Value == nil {
		httputil.RespondWithError(c, errors.BadRequest("value is required", nil))
		return
	}
	flag := h.service.Classify(req.Value, req.ReferenceRange)
	httputil.RespondWithSuccess(c, classifyResponse{Flag: flag, Abnormal: flag.Abnormal()})
}
