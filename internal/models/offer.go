package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusRejected  OfferStatus = "rejected"
	OfferStatusCountered OfferStatus = "countered"
)

// Offer is a user's proposal to sell an item to a shop.
type Offer struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId,omitempty"`
	ShopID       string           `json:"shopId"`
	ItemName     string           `json:"itemName"`
	Description  string           `json:"description,omitempty"`
	Weight       decimal.Decimal  `json:"weight"`
	AskingPrice  decimal.Decimal  `json:"askingPrice"`
	CounterPrice *decimal.Decimal `json:"counterPrice,omitempty"`
	Images       []string         `json:"images,omitempty"`
	Status       OfferStatus      `json:"status"`
	CreatedAt    *time.Time       `json:"createdAt,omitempty"`
}

type OfferInput struct {
	ShopID      string          `json:"shopId" binding:"notblank"`
	ItemName    string          `json:"itemName" binding:"notblank"`
	Description string          `json:"description,omitempty"`
	Weight      decimal.Decimal `json:"weight" binding:"gte=0"`
	AskingPrice decimal.Decimal `json:"askingPrice" binding:"gt=0"`
	Images      []string        `json:"images,omitempty"`
}

type OfferDecision struct {
	Status       OfferStatus      `json:"status"`
	CounterPrice *decimal.Decimal `json:"counterPrice,omitempty"`
}
