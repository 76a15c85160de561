package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"junkmart/web/internal/models"
	"junkmart/web/internal/validate"
)

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"oneof=pending confirmed shipped delivered cancelled"`
}

type offerDecisionRequest struct {
	Status       models.OfferStatus `json:"status" binding:"oneof=accepted rejected countered"`
	CounterPrice *decimal.Decimal   `json:"counterPrice" binding:"omitempty,gt=0"`
}

func (h HandlerSet) OwnerProducts(c *gin.Context) {
	products, err := currentClient(c).Resources.OwnerProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	in, ok := h.bindProduct(c)
	if !ok {
		return
	}
	product, err := currentClient(c).Resources.CreateProduct(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h HandlerSet) UpdateProduct(c *gin.Context) {
	in, ok := h.bindProduct(c)
	if !ok {
		return
	}
	product, err := currentClient(c).Resources.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	if err := currentClient(c).Resources.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) bindProduct(c *gin.Context) (models.ProductInput, bool) {
	var in models.ProductInput
	if !h.bindJSON(c, &in) {
		return in, false
	}
	in.Name = strings.TrimSpace(in.Name)
	return in, true
}

func (h HandlerSet) OwnerOrders(c *gin.Context) {
	orders, err := currentClient(c).Resources.OwnerOrders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h HandlerSet) UpdateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := currentClient(c).Resources.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h HandlerSet) OwnerOffers(c *gin.Context) {
	offers, err := currentClient(c).Resources.OwnerOffers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h HandlerSet) DecideOffer(c *gin.Context) {
	var req offerDecisionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	decision := models.OfferDecision{Status: req.Status}
	if req.Status == models.OfferStatusCountered {
		if req.CounterPrice == nil {
			h.fail(c, validate.Invalid("counterPrice", "A counter offer needs a price above zero"))
			return
		}
		decision.CounterPrice = req.CounterPrice
	}

	offer, err := currentClient(c).Resources.DecideOffer(c.Request.Context(), c.Param("id"), decision)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offer": offer})
}
