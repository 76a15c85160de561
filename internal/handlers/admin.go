package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/models"
)

type userStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"oneof=active blocked"`
}

func (h HandlerSet) AdminOwners(c *gin.Context) {
	owners, err := currentClient(c).Resources.Owners(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"owners": owners})
}

func (h HandlerSet) ModerateOwner(c *gin.Context) {
	action, ok := approvalAction(c)
	if !ok {
		return
	}
	if err := currentClient(c).Resources.ModerateOwner(c.Request.Context(), c.Param("id"), action); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminProducts(c *gin.Context) {
	products, err := currentClient(c).Resources.ModerationProducts(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h HandlerSet) ModerateProduct(c *gin.Context) {
	action, ok := approvalAction(c)
	if !ok {
		return
	}
	if err := currentClient(c).Resources.ModerateProduct(c.Request.Context(), c.Param("id"), action); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminUsers(c *gin.Context) {
	users, err := currentClient(c).Resources.Users(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h HandlerSet) SetUserStatus(c *gin.Context) {
	var req userStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := currentClient(c).Resources.SetUserStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func approvalAction(c *gin.Context) (apiclient.ApprovalAction, bool) {
	action := apiclient.ApprovalAction(c.Param("action"))
	if !action.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown moderation action"})
		return "", false
	}
	return action, true
}
