package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"

	"junkmart/web/internal/clients"
	"junkmart/web/internal/config"
)

const clientKey = "client"

// Client attaches the browser's live state, identified by a ksuid cookie. A
// missing or malformed cookie starts a fresh browser identity.
func Client(registry *clients.Registry, cfg config.ClientConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || !validClientID(id) {
			id = ksuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, id, int(cfg.CookieMaxAge.Seconds()), "/", "", cfg.CookieSecure, true)
		}

		client, err := registry.Get(c.Request.Context(), id)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(clientKey, client)
		c.Next()
	}
}

// CurrentClient returns the client attached by Client, or nil.
func CurrentClient(c *gin.Context) *clients.Client {
	v, ok := c.Get(clientKey)
	if !ok {
		return nil
	}
	client, _ := v.(*clients.Client)
	return client
}

func validClientID(id string) bool {
	_, err := ksuid.Parse(id)
	return err == nil
}
