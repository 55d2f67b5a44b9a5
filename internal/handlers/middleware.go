package handlers

import (
	"net/http"

	"secureforms/internal/session"

	"github.com/gin-gonic/gin"
)

const ctxSessionState = "sessionState"

// requireSessionMiddleware gates JSON endpoints behind an authenticated
// session and stashes the loaded state in the Gin context.
func (h *Handler) requireSessionMiddleware(c *gin.Context) {
	state := h.gate.Load(c)
	if !state.Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "authentication required",
		})
		return
	}

	c.Set(ctxSessionState, state)
	c.Next()
}

// sessionStateFrom returns the state stored by requireSessionMiddleware; the
// zero (anonymous) state when the middleware did not run.
func sessionStateFrom(c *gin.Context) session.State {
	if v, ok := c.Get(ctxSessionState); ok {
		if st, ok := v.(session.State); ok {
			return st
		}
	}
	return session.State{}
}
