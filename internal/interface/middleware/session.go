package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*application.Identity, error)
}

// LoadSession attaches the identity behind the session cookie, if any.
// Anonymous requests pass through untouched.
func LoadSession(sessions SessionResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.SessionToken(c)
		if token == "" {
			c.Next()
			return
		}
		id, err := sessions.ResolveSession(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(CtxIdentityKey, id)
			c.Set(CtxUserIDKey, id.UserID)
		case errors.Is(err, application.ErrNoSession):
		default:
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("session lookup failed")
		}
		c.Next()
	}
}

// IdentityFrom returns the request's identity or nil for anonymous visitors.
func IdentityFrom(c *gin.Context) *application.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*application.Identity)
	return id
}

// RequireSession sends anonymous visitors to the login page.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			c.Redirect(http.StatusFound, "/login/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSessionJSON is RequireSession for API routes.
func RequireSessionJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c) == nil {
			response.Abort(c, response.Error[any](c, http.StatusUnauthorized, "session required", nil))
			return
		}
		c.Next()
	}
}
