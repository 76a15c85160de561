package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/checkout"
)

func (h HandlerSet) Checkout(c *gin.Context) {
	var info checkout.ShippingInfo
	if !h.bindJSON(c, &info) {
		return
	}

	client := currentClient(c)
	result, err := client.Checkout.Submit(c.Request.Context(), info)
	if err != nil {
		h.fail(c, err)
		return
	}
	client.Resources.OrderPlaced()

	c.JSON(http.StatusCreated, result)
}
