package apiclient

import (
	"context"

	"junkmart/web/internal/models"
)

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	if err := c.post(ctx, "/orders", req, &resp); err != nil {
		return models.Order{}, err
	}
	return resp.Order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.get(ctx, "/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) ListOffers(ctx context.Context) ([]models.Offer, error) {
	var resp struct {
		Offers []models.Offer `json:"offers"`
	}
	if err := c.get(ctx, "/offers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Offers, nil
}

func (c *Client) CreateOffer(ctx context.Context, in models.OfferInput) (models.Offer, error) {
	var resp struct {
		Offer models.Offer `json:"offer"`
	}
	if err := c.post(ctx, "/offers", in, &resp); err != nil {
		return models.Offer{}, err
	}
	return resp.Offer, nil
}
