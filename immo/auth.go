package immo

import (
	"context"
	"fmt"
)

// Login authenticates with email and password, returning the user
// record and bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	if err := c.post(ctx, PathLogin, LoginRequest{Email: email, Password: password}, &payload); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}

	return &payload, nil
}

// Register creates an account and returns the initial session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthPayload, error) {
	var payload AuthPayload
	if err := c.post(ctx, PathRegister, req, &payload); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	return &payload, nil
}

// Refresh exchanges the current bearer token for a fresh one. The
// request body is empty; the server identifies the session from the
// Authorization header, which the caller attaches explicitly since
// this endpoint bypasses the authorization pipeline.
func (c *Client) Refresh(ctx context.Context, currentToken string) (*AuthPayload, error) {
	req, err := c.newEmptyPost(ctx, PathRefresh)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+currentToken)

	var payload AuthPayload
	if err := c.send(req, PathRefresh, &payload); err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	return &payload, nil
}

// Me fetches the authenticated user's current record.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	return &user, nil
}

// UpdateProfile updates profile fields and returns the new user record.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]any) (*User, error) {
	var user User
	if err := c.put(ctx, "/auth/profile", fields, &user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return &user, nil
}
