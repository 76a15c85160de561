package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"junkmart/web/internal/clients"
	"junkmart/web/internal/config"
	"junkmart/web/internal/middleware"
	"junkmart/web/internal/models"
	"junkmart/web/internal/validate"
)

var bindingOnce sync.Once

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	registry *clients.Registry
	checks   []HealthCheck
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, registry *clients.Registry, checks ...HealthCheck) HandlerSet {
	bindingOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			validate.Configure(v)
		}
	})
	return HandlerSet{
		log:      log,
		cfg:      cfg,
		registry: registry,
		checks:   checks,
	}
}

// Register mounts the JSON API. The router is expected to be the /api group.
func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	api := router.Group("")
	api.Use(middleware.Client(h.registry, h.cfg.Client))

	wait := h.cfg.Client.ResolveTimeout
	anyRole := middleware.RequireRoles(wait)
	buyer := middleware.RequireRoles(wait, models.UserRoleUser)
	chatter := middleware.RequireRoles(wait, models.UserRoleUser, models.UserRoleOwner)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login/:role", h.Login)
		authGroup.POST("/register/:role", h.Signup)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/session", h.Session)
	}

	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", h.GetCart)
		cartGroup.DELETE("", h.ClearCart)
		cartGroup.POST("/items", h.AddCartItem)
		cartGroup.PATCH("/items/:productId", h.UpdateCartItem)
		cartGroup.DELETE("/items/:productId", h.RemoveCartItem)
	}
	api.POST("/checkout", buyer, h.Checkout)

	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/shops", h.ListShops)
	api.GET("/shops/:id", h.GetShop)

	api.GET("/orders", buyer, h.ListOrders)
	api.GET("/offers", buyer, h.ListOffers)
	api.POST("/offers", buyer, h.CreateOffer)

	api.GET("/notifications", anyRole, h.ListNotifications)
	api.GET("/notifications/unread-count", anyRole, h.UnreadCount)
	api.PATCH("/notifications/:id/read", anyRole, h.MarkNotificationRead)

	api.GET("/chats", chatter, h.ListChats)
	api.POST("/chats", buyer, h.StartChat)
	api.GET("/chats/:id/messages", chatter, h.ListMessages)
	api.POST("/chats/:id/messages", chatter, h.SendMessage)

	owner := api.Group("/owner")
	owner.Use(middleware.RequireRoles(wait, models.UserRoleOwner))
	{
		owner.GET("/products", h.OwnerProducts)
		owner.POST("/products", h.CreateProduct)
		owner.PUT("/products/:id", h.UpdateProduct)
		owner.DELETE("/products/:id", h.DeleteProduct)
		owner.GET("/orders", h.OwnerOrders)
		owner.PATCH("/orders/:id/status", h.UpdateOrderStatus)
		owner.GET("/offers", h.OwnerOffers)
		owner.PATCH("/offers/:id", h.DecideOffer)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRoles(wait, models.UserRoleAdmin))
	{
		admin.GET("/owners", h.AdminOwners)
		admin.PATCH("/owners/:id/:action", h.ModerateOwner)
		admin.GET("/products", h.AdminProducts)
		admin.PATCH("/products/:id/:action", h.ModerateProduct)
		admin.GET("/users", h.AdminUsers)
		admin.PATCH("/users/:id/status", h.SetUserStatus)
	}
}

func currentClient(c *gin.Context) *clients.Client {
	return middleware.CurrentClient(c)
}
