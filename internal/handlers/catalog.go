package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"junkmart/web/internal/models"
)

func (h HandlerSet) ListProducts(c *gin.Context) {
	q := models.ProductQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		ShopID:   c.Query("shopId"),
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			q.Page = v
		}
	}

	products, err := currentClient(c).Resources.Products(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	product, err := currentClient(c).Resources.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h HandlerSet) ListShops(c *gin.Context) {
	shops, err := currentClient(c).Resources.Shops(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

func (h HandlerSet) GetShop(c *gin.Context) {
	shop, err := currentClient(c).Resources.Shop(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}
