package middleware

import (
	"net/http"

	"github.com/colexalia/colexalia-backend/internal/common"
	"github.com/colexalia/colexalia-backend/internal/workspace"
	"github.com/colexalia/colexalia-backend/pkg/ginutil"
	"github.com/colexalia/colexalia-backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

const workspaceKey = "workspace"

// Workspace opens a client session for the request's bearer token and closes it after the handler.
// A missing or invalid token leaves the session signed out.
func Workspace(factory *workspace.Factory) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := factory.Open(c.Request.Context(), ginutil.BearerToken(c))
		if err != nil {
			logger.GetLogger().Warn().Err(err).Msg("session could not be opened")
			common.V2ErrorResponse(c, http.StatusServiceUnavailable, "Session unavailable", err)
			c.Abort()
			return
		}
		defer ws.Close()

		c.Set(workspaceKey, ws)
		user := ws.Holder.CurrentUser()
		if user != nil {
			c.Set("userID", user.ID)
		}
		recordSession(user != nil)

		c.Next()
	}
}

// RequireAuth rejects requests whose session is signed out
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == "" {
			common.V2ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetWorkspace returns the request's workspace set by Workspace
func GetWorkspace(c *gin.Context) *workspace.Workspace {
	v, exists := c.Get(workspaceKey)
	if !exists {
		return nil
	}
	ws, _ := v.(*workspace.Workspace)
	return ws
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get("userID")
	if !exists {
		return ""
	}
	if str, ok := userID.(string); ok {
		return str
	}
	return ""
}
