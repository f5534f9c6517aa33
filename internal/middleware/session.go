package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ed-orders/internal/model"
	"github.com/jwalitptl/ed-orders/pkg/errors"
	"github.com/jwalitptl/ed-orders/pkg/httputil"
)

const (
	HeaderSessionToken = "X-Session-Token"
	ContextSession     = "session"
	ContextClinicianID = "clinician_id"
)

type SessionResolver interface {
	Get(ctx context.Context, token string) (*model.Session, error)
}

// Session attaches the caller's session when the token resolves. Requests
// without a usable token pass through anonymously.
func Session(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.GetHeader(HeaderSessionToken); token != "" {
			if sess, err := resolver.Get(c.Request.Context(), token); err == nil {
				c.Set(ContextSession, sess)
				c.Set(ContextClinicianID, sess.ClinicianID)
			}
		}
		c.Next()
	}
}

// RequireSession rejects anonymous requests. It must run after Session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			httputil.RespondWithError(c, errors.Unauthorized(nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentSession(c *gin.Context) (*model.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*model.Session)
	return sess, ok
}
