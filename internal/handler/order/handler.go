package order

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/handler"
	"github.com/jwalitptl/ed-orders/internal/middleware"
	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

type Service interface {
	CreateDraft(ctx context.Context, clinicianID string, req *model.CreateDraftRequest) (*model.OrderDraft, error)
	GetDraft(ctx context.Context, id string) (*model.OrderDraft, error)
	Submit(ctx context.Context, clinicianID, draftID string) (*model.Submission, error)
	Justify(ctx context.Context, clinicianID, draftID, justification string) (*model.Submission, error)
	Cancel(ctx context.Context, clinicianID, draftID string) (*model.OrderDraft, error)
	Redirect(ctx context.Context, clinicianID, draftID string) (*model.OrderDraft, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *model.OrderFilters) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, clinicianID, id string, status model.OrderStatus) (*model.Order, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/status", middleware.RequireSession(), h.UpdateStatus)
	}

	drafts := orders.Group("/drafts", middleware.RequireSession())
	{
		drafts.POST("", h.CreateDraft)
		drafts.GET("/:id", h.GetDraft)
		drafts.POST("/:id/submit", h.Submit)
		drafts.POST("/:id/justify", h.Justify)
		drafts.POST("/:id/cancel", h.Cancel)
		drafts.POST("/:id/redirect", h.Redirect)
	}
}

func (h *Handler) CreateDraft(c *gin.Context) {
	var req model.CreateDraftRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	draft, err := h.service.CreateDraft(c.Request.Context(), handler.ClinicianID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, draft)
}

func (h *Handler) GetDraft(c *gin.Context) {
	draft, err := h.service.GetDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, draft)
}

// Submit answers 201 when an order was placed and 200 when the draft is
// held for a duplicate justification.
func (h *Handler) Submit(c *gin.Context) {
	sub, err := h.service.Submit(c.Request.Context(), handler.ClinicianID(c), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	respondSubmission(c, sub)
}

func (h *Handler) Justify(c *gin.Context) {
	var req model.JustifyRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sub, err := h.service.Justify(c.Request.Context(), handler.ClinicianID(c), c.Param("id"), req.Justification)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	respondSubmission(c, sub)
}

func respondSubmission(c *gin.Context, sub *model.Submission) {
	status := http.StatusOK
	if sub.Order != nil {
		status = http.StatusCreated
	}
	httputil.RespondWithStatus(c, status, sub)
}

func (h *Handler) Cancel(c *gin.Context) {
	draft, err := h.service.Cancel(c.Request.Context(), handler.ClinicianID(c), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, draft)
}

// Redirect closes the draft; redirect_to on the response names the result
// the dashboard should open.
func (h *Handler) Redirect(c *gin.Context) {
	draft, err := h.service.Redirect(c.Request.Context(), handler.ClinicianID(c), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, draft)
}

func (h *Handler) ListOrders(c *gin.Context) {
	var filters model.OrderFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	orders, err := h.service.ListOrders(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, order)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req model.UpdateOrderStatusRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), handler.ClinicianID(c), c.Param("id"), req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, order)
}
