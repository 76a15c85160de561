package apiclient

import (
	"context"
	"net/url"

	"junkmart/web/internal/models"
)

// ApprovalAction is the verb appended to admin moderation endpoints.
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

func (a ApprovalAction) Valid() bool {
	return a == ActionApprove || a == ActionReject
}

func (c *Client) ListOwners(ctx context.Context, status string) ([]models.UserRecord, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var resp struct {
		Owners []models.UserRecord `json:"owners"`
	}
	if err := c.get(ctx, "/admin/owners", query, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Owners {
		resp.Owners[i].Role = models.UserRoleOwner
	}
	return resp.Owners, nil
}

func (c *Client) ModerateOwner(ctx context.Context, id string, action ApprovalAction) error {
	return c.patch(ctx, "/admin/owners/"+escape(id)+"/"+string(action), nil, nil)
}

func (c *Client) ListModerationProducts(ctx context.Context, status string) ([]models.Product, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.get(ctx, "/admin/products", query, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) ModerateProduct(ctx context.Context, id string, action ApprovalAction) error {
	return c.patch(ctx, "/admin/products/"+escape(id)+"/"+string(action), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.UserRecord, error) {
	var resp struct {
		Users []models.UserRecord `json:"users"`
	}
	if err := c.get(ctx, "/admin/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) SetUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	body := map[string]models.UserStatus{"status": status}
	return c.patch(ctx, "/admin/users/"+escape(id)+"/status", body, nil)
}
