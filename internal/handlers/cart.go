package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gte=0"`
}

type updateCartItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h HandlerSet) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, currentClient(c).Cart.Summary())
}

// AddCartItem snapshots the product as the backend currently describes it.
func (h HandlerSet) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client := currentClient(c)
	product, err := client.Resources.Product(c.Request.Context(), req.ProductID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := client.Cart.Add(c.Request.Context(), product, req.Quantity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client.Cart.Summary())
}

func (h HandlerSet) UpdateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client := currentClient(c)
	if err := client.Cart.UpdateQuantity(c.Request.Context(), c.Param("productId"), req.Delta); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client.Cart.Summary())
}

func (h HandlerSet) RemoveCartItem(c *gin.Context) {
	client := currentClient(c)
	if err := client.Cart.Remove(c.Request.Context(), c.Param("productId")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client.Cart.Summary())
}

func (h HandlerSet) ClearCart(c *gin.Context) {
	client := currentClient(c)
	if err := client.Cart.Clear(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, client.Cart.Summary())
}
