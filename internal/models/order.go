package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
	ShippingCity    string             `json:"shippingCity"`
	ShippingZip     string             `json:"shippingZip"`
}

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	ShopID          string          `json:"shopId,omitempty"`
	Items           []OrderItem     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	ShippingCity    string          `json:"shippingCity,omitempty"`
	ShippingZip     string          `json:"shippingZip,omitempty"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
}
