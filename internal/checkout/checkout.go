// Package checkout turns a cart into an order-creation request.
//
// A submission is a single best-effort request: there is no retry and no
// idempotency key, so resubmitting after a lost response can create a second
// order.
package checkout

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"junkmart/web/internal/apiclient"
	"junkmart/web/internal/cart"
	"junkmart/web/internal/models"
	"junkmart/web/internal/validate"
)

// SuccessRedirect is where the browser goes once the order is placed.
const SuccessRedirect = "/orders"

type ShippingInfo struct {
	Address string `json:"shippingAddress" validate:"notblank"`
	City    string `json:"shippingCity" validate:"notblank"`
	Zip     string `json:"shippingZip" validate:"notblank"`
}

type Result struct {
	Order    models.Order `json:"order"`
	Redirect string       `json:"redirect"`
}

// ClientSource yields the API client authorized for the current browser.
type ClientSource interface {
	Client(ctx context.Context) *apiclient.Client
}

type Service struct {
	cart    *cart.Cart
	clients ClientSource
	log     zerolog.Logger
}

func New(c *cart.Cart, clients ClientSource, log zerolog.Logger) *Service {
	return &Service{
		cart:    c,
		clients: clients,
		log:     log,
	}
}

// Submit places the order. On success the cart is emptied; on any failure it
// is left exactly as it was.
func (s *Service) Submit(ctx context.Context, info ShippingInfo) (Result, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return Result{}, validate.Invalid("items", "Your cart is empty")
	}
	info = ShippingInfo{
		Address: strings.TrimSpace(info.Address),
		City:    strings.TrimSpace(info.City),
		Zip:     strings.TrimSpace(info.Zip),
	}
	if err := validate.Struct(info); err != nil {
		return Result{}, err
	}

	req := models.CreateOrderRequest{
		Items:           make([]models.OrderItemRequest, 0, len(items)),
		ShippingAddress: info.Address,
		ShippingCity:    info.City,
		ShippingZip:     info.Zip,
	}
	for _, item := range items {
		req.Items = append(req.Items, models.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.clients.Client(ctx).CreateOrder(ctx, req)
	if err != nil {
		s.log.Warn().Err(err).Int("items", len(items)).Msg("checkout failed, cart kept")
		return Result{}, err
	}

	if err := s.cart.Clear(ctx); err != nil {
		// the order exists; a stale cart is the lesser problem
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("clear cart after checkout failed")
	}

	s.log.Info().Str("order_id", order.ID).Int("items", len(items)).Msg("order placed")
	return Result{Order: order, Redirect: SuccessRedirect}, nil
}
