package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/auth"
	"junkmart/web/internal/guard"
	"junkmart/web/internal/models"
)

const (
	userKey = "current_user"

	apiPrefix = "/api"
)

// SessionState waits up to timeout for the browser's session to resolve and
// returns whatever state it is in by then.
func SessionState(c *gin.Context, timeout time.Duration) auth.State {
	client := CurrentClient(c)
	if client == nil {
		return auth.State{}
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()
	_ = client.Session.Wait(ctx)
	return client.Session.Snapshot()
}

// CurrentUser returns the user admitted by RequireRoles or PageGuard.
func CurrentUser(c *gin.Context) *models.UserRecord {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.UserRecord)
	return user
}

// RequireRoles gates API routes. It answers with status codes instead of
// redirects.
func RequireRoles(resolveTimeout time.Duration, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := SessionState(c, resolveTimeout)
		path := strings.TrimPrefix(c.Request.URL.Path, apiPrefix)

		d := guard.RequireAuth(state, path, roles...)
		switch d.Outcome {
		case guard.Loading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still loading"})
			return
		case guard.Redirect:
			switch d.Reason {
			case guard.ReasonUnauthenticated:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "login": d.To})
			case guard.ReasonPendingApproval:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "Your account is pending approval",
					"code":  apiclient.CodePendingApproval,
				})
			default:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			}
			return
		}

		c.Set(userKey, state.User)
		c.Next()
	}
}

// PageGuard gates page routes: unresolved sessions get a loading
// placeholder, refused ones a redirect.
func PageGuard(resolveTimeout time.Duration, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := SessionState(c, resolveTimeout)
		d := guard.RequireAuth(state, c.Request.URL.Path, roles...)
		if !applyPageDecision(c, d) {
			return
		}
		c.Set(userKey, state.User)
		c.Next()
	}
}

// PublicOnlyPage gates sign-in, sign-up and recovery pages.
func PublicOnlyPage(resolveTimeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := guard.PublicOnly(SessionState(c, resolveTimeout))
		if !applyPageDecision(c, d) {
			return
		}
		c.Next()
	}
}

func applyPageDecision(c *gin.Context, d guard.Decision) bool {
	switch d.Outcome {
	case guard.Loading:
		c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"state": "loading"})
		return false
	case guard.Redirect:
		target := d.To
		if d.From != "" {
			target += "?" + url.Values{"from": {d.From}}.Encode()
		}
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return false
	}
	return true
}
