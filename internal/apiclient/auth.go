package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"junkmart/web/internal/models"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest carries the sign-up fields of both registrable roles.
// ConfirmPassword is checked locally and never sent. Name belongs to users,
// BusinessName and Address to owners.
type RegisterRequest struct {
	Name            string `json:"name,omitempty" validate:"notblank"`
	BusinessName    string `json:"businessName,omitempty" validate:"notblank"`
	Address         string `json:"address,omitempty" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
	Phone           string `json:"phone,omitempty"`
}

// AuthResponse is {token, user|owner|admin}. Token is empty when the backend
// withheld it (owner registrations awaiting approval).
type AuthResponse struct {
	Token string
	User  *models.UserRecord
}

func (c *Client) Login(ctx context.Context, role models.UserRole, creds Credentials) (AuthResponse, error) {
	var raw map[string]json.RawMessage
	if err := c.post(ctx, "/auth/login/"+string(role), creds, &raw); err != nil {
		return AuthResponse{}, err
	}
	return decodeAuthResponse(role, raw)
}

func (c *Client) Register(ctx context.Context, role models.UserRole, req RegisterRequest) (AuthResponse, error) {
	var raw map[string]json.RawMessage
	if err := c.post(ctx, "/auth/register/"+string(role), req, &raw); err != nil {
		return AuthResponse{}, err
	}
	return decodeAuthResponse(role, raw)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.post(ctx, "/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*models.UserRecord, error) {
	var resp struct {
		User *models.UserRecord `json:"user"`
	}
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("decode /auth/me: missing user")
	}
	return resp.User, nil
}

func decodeAuthResponse(role models.UserRole, raw map[string]json.RawMessage) (AuthResponse, error) {
	var resp AuthResponse
	if tok, ok := raw["token"]; ok {
		if err := json.Unmarshal(tok, &resp.Token); err != nil {
			return AuthResponse{}, fmt.Errorf("decode token: %w", err)
		}
	}

	payload, ok := raw[string(role)]
	if !ok {
		payload, ok = raw["user"]
	}
	if !ok {
		return AuthResponse{}, fmt.Errorf("decode auth response: missing %s payload", role)
	}

	var user models.UserRecord
	if err := json.Unmarshal(payload, &user); err != nil {
		return AuthResponse{}, fmt.Errorf("decode %s payload: %w", role, err)
	}
	user.Role = role
	resp.User = &user
	return resp, nil
}
