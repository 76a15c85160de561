package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"junkmart/web/internal/models"
)

func (c *Client) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	query := url.Values{}
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.ShopID != "" {
		query.Set("shopId", q.ShopID)
	}
	if q.Page > 1 {
		query.Set("page", strconv.Itoa(q.Page))
	}

	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.get(ctx, "/products", query, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var resp struct {
		Product models.Product `json:"product"`
	}
	if err := c.get(ctx, "/products/"+escape(id), nil, &resp); err != nil {
		return models.Product{}, err
	}
	return resp.Product, nil
}

func (c *Client) ListShops(ctx context.Context) ([]models.Shop, error) {
	var resp struct {
		Shops []models.Shop `json:"shops"`
	}
	if err := c.get(ctx, "/shops", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Shops, nil
}

func (c *Client) GetShop(ctx context.Context, id string) (models.Shop, error) {
	var resp struct {
		Shop models.Shop `json:"shop"`
	}
	if err := c.get(ctx, "/shops/"+escape(id), nil, &resp); err != nil {
		return models.Shop{}, err
	}
	return resp.Shop, nil
}
