package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/models"
)

type startChatRequest struct {
	ShopID string `json:"shopId" binding:"notblank"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"notblank"`
}

func (h HandlerSet) ListOrders(c *gin.Context) {
	orders, err := currentClient(c).Resources.Orders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h HandlerSet) ListOffers(c *gin.Context) {
	offers, err := currentClient(c).Resources.Offers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h HandlerSet) CreateOffer(c *gin.Context) {
	var in models.OfferInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.ItemName = strings.TrimSpace(in.ItemName)

	offer, err := currentClient(c).Resources.CreateOffer(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"offer": offer})
}

func (h HandlerSet) ListNotifications(c *gin.Context) {
	notifications, err := currentClient(c).Resources.Notifications(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h HandlerSet) UnreadCount(c *gin.Context) {
	count, err := currentClient(c).Resources.UnreadCount(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	if err := currentClient(c).Resources.MarkNotificationRead(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ListChats(c *gin.Context) {
	chats, err := currentClient(c).Resources.Chats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

func (h HandlerSet) StartChat(c *gin.Context) {
	var req startChatRequest
	if !h.bindJSON(c, &req) {
		return
	}

	chat, err := currentClient(c).Resources.StartChat(c.Request.Context(), req.ShopID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

func (h HandlerSet) ListMessages(c *gin.Context) {
	messages, err := currentClient(c).Resources.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h HandlerSet) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := currentClient(c).Resources.SendMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
