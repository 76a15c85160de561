package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "pending"
	ProductStatusApproved ProductStatus = "approved"
	ProductStatusRejected ProductStatus = "rejected"
)

type ShopRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" binding:"notblank"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price" binding:"gte=0"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Images      []string        `json:"images,omitempty"`
	Status      ProductStatus   `json:"status,omitempty"`
	ShopID      string          `json:"shopId,omitempty"`
	Shop        *ShopRef        `json:"shop,omitempty"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
}

// ProductInput is the owner-side create/update payload.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images,omitempty"`
}

type Shop struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Address     string     `json:"address,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Logo        string     `json:"logo,omitempty"`
	OwnerID     string     `json:"ownerId,omitempty"`
	Products    []Product  `json:"products,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type ProductQuery struct {
	Search   string
	Category string
	ShopID   string
	Page     int
}
