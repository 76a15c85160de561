package apiclient

import (
	"context"

	"junkmart/web/internal/models"
)

func (c *Client) ListOwnerProducts(ctx context.Context) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.get(ctx, "/owner/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	var resp struct {
		Product models.Product `json:"product"`
	}
	if err := c.post(ctx, "/owner/products", in, &resp); err != nil {
		return models.Product{}, err
	}
	return resp.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (models.Product, error) {
	var resp struct {
		Product models.Product `json:"product"`
	}
	if err := c.put(ctx, "/owner/products/"+escape(id), in, &resp); err != nil {
		return models.Product{}, err
	}
	return resp.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.delete(ctx, "/owner/products/"+escape(id), nil)
}

func (c *Client) ListOwnerOrders(ctx context.Context) ([]models.Order, error) {
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	if err := c.get(ctx, "/owner/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	body := map[string]models.OrderStatus{"status": status}
	if err := c.patch(ctx, "/owner/orders/"+escape(id)+"/status", body, &resp); err != nil {
		return models.Order{}, err
	}
	return resp.Order, nil
}

func (c *Client) ListOwnerOffers(ctx context.Context) ([]models.Offer, error) {
	var resp struct {
		Offers []models.Offer `json:"offers"`
	}
	if err := c.get(ctx, "/owner/offers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Offers, nil
}

func (c *Client) DecideOffer(ctx context.Context, id string, decision models.OfferDecision) (models.Offer, error) {
	var resp struct {
		Offer models.Offer `json:"offer"`
	}
	if err := c.patch(ctx, "/owner/offers/"+escape(id), decision, &resp); err != nil {
		return models.Offer{}, err
	}
	return resp.Offer, nil
}
