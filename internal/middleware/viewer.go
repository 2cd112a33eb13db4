package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/majorcatalog/internal/config"
)

// ContextKeyViewerID is the Gin context key for the viewer id.
const ContextKeyViewerID = "viewer_id"

const viewerCookieMaxAge = 30 * 24 * 60 * 60

// Viewer identifies the browser by a uuid cookie, issuing one when absent
// or malformed.
func Viewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(config.Keys.ViewerCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(config.Keys.ViewerCookie, id, viewerCookieMaxAge, "/", "", false, true)
		}
		c.Set(ContextKeyViewerID, id)
		c.Next()
	}
}

// GetViewerID returns the viewer id set by Viewer.
func GetViewerID(c *gin.Context) string {
	return c.GetString(ContextKeyViewerID)
}
