package task

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/handler"
	"github.com/jwalitptl/ed-orders/internal/middleware"
	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

type Service interface {
	List(ctx context.Context, filters *model.TaskFilters) ([]*model.Task, error)
	Complete(ctx context.Context, id string) (*model.Task, error)
	Reopen(ctx context.Context, id string) (*model.Task, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tasks := r.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.PUT("/:id/complete", middleware.RequireSession(), h.Complete)
		tasks.PUT("/:id/reopen", middleware.RequireSession(), h.Reopen)
	}
}

// List defaults to the caller's own tasks when a session is present and no
// assignee is given.
func (h *Handler) List(c *gin.Context) {
	var filters model.TaskFilters
	if !handler.BindQuery(c, &filters) {
		return
	}
	if filters.AssignedTo == "" {
		filters.AssignedTo = handler.ClinicianID(c)
	}
	tasks, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	handler.RespondWithPage(c, tasks)
}

func (h *Handler) Complete(c *gin.Context) {
	t, err := h.service.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, t)
}

func (h *Handler) Reopen(c *gin.Context) {
	t, err := h.service.Reopen(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, t)
}
