package session

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
	Create(ctx context.Context, req *model.CreateSessionRequest) (*model.Session, error)
	Delete(ctx context.Context, token string)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	session := r.Group("/session")
	{
		session.POST("", h.Create)
		session.GET("", middleware.RequireSession(), h.Get)
		session.DELETE("", middleware.RequireSession(), h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	sess, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, sess)
}

func (h *Handler) Get(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	httputil.RespondWithSuccess(c, sess)
}

func (h *Handler) Delete(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	h.service.Delete(c.Request.Context(), sess.Token)
	c.Status(http.StatusNoContent)
}
