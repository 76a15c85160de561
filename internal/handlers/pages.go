package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/middleware"
	"junkmart/web/internal/models"
)

type page struct {
	path string
	name string
}

var (
	publicPages = []page{
		{"/", "home"},
		{"/products", "products"},
		{"/products/:id", "product"},
		{"/shops", "shops"},
		{"/shops/:id", "shop"},
	}
	publicOnlyPages = []page{
		{"/login/:role", "login"},
		{"/signup/:role", "signup"},
		{"/forgot-password", "forgot-password"},
	}
	userPages = []page{
		{"/dashboard", "dashboard"},
		{"/cart", "cart"},
		{"/checkout", "checkout"},
		{"/orders", "orders"},
		{"/offers", "offers"},
		{"/chats", "chats"},
		{"/notifications", "notifications"},
	}
	ownerPages = []page{
		{"/owner/dashboard", "owner-dashboard"},
		{"/owner/products", "owner-products"},
		{"/owner/orders", "owner-orders"},
		{"/owner/offers", "owner-offers"},
		{"/owner/chats", "owner-chats"},
	}
	adminPages = []page{
		{"/admin/dashboard", "admin-dashboard"},
		{"/admin/owners", "admin-owners"},
		{"/admin/products", "admin-products"},
		{"/admin/users", "admin-users"},
	}
)

// RegisterPages mounts the page routes. Markup is rendered by the browser
// app; a page answer only says which page to show and for whom.
func (h HandlerSet) RegisterPages(router gin.IRouter) {
	wait := h.cfg.Client.ResolveTimeout

	pages := router.Group("")
	pages.Use(middleware.Client(h.registry, h.cfg.Client))

	for _, p := range publicPages {
		pages.GET(p.path, h.renderPublic(p.name))
	}
	for _, p := range publicOnlyPages {
		pages.GET(p.path, middleware.PublicOnlyPage(wait), h.renderPublic(p.name))
	}
	guarded := []struct {
		pages []page
		role  models.UserRole
	}{
		{userPages, models.UserRoleUser},
		{ownerPages, models.UserRoleOwner},
		{adminPages, models.UserRoleAdmin},
	}
	for _, g := range guarded {
		for _, p := range g.pages {
			pages.GET(p.path, middleware.PageGuard(wait, g.role), h.renderGuarded(p.name))
		}
	}
}

func (h HandlerSet) renderPublic(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := c.Param("role"); role != "" && !validPageRole(c.FullPath(), models.UserRole(role)) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Page not found"})
			return
		}
		state := middleware.SessionState(c, h.cfg.Client.ResolveTimeout)
		c.JSON(http.StatusOK, gin.H{"page": name, "user": state.User, "loading": state.Loading})
	}
}

func (h HandlerSet) renderGuarded(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": name, "user": middleware.CurrentUser(c)})
	}
}

func validPageRole(route string, role models.UserRole) bool {
	if route == "/signup/:role" {
		return role.CanRegister()
	}
	return role.Valid()
}
