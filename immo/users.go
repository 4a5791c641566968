package immo

import (
	"context"
	"fmt"
)

// ListUsers returns a page of accounts matching the given filters
// (admin only).
func (c *Client) ListUsers(ctx context.Context, params Params) (*Page[User], error) {
	var page Page[User]
	if err := c.get(ctx, "/users", params, &page); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return &page, nil
}

// GetUser returns a single account.
func (c *Client) GetUser(ctx context.Context, id int) (*User, error) {
	var u User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), nil, &u); err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}

	return &u, nil
}

// CreateUser creates an account (admin only).
func (c *Client) CreateUser(ctx context.Context, fields map[string]any) (*User, error) {
	var u User
	if err := c.post(ctx, "/users", fields, &u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &u, nil
}

// UpdateUser updates an account (admin only).
func (c *Client) UpdateUser(ctx context.Context, id int, fields map[string]any) (*User, error) {
	var u User
	if err := c.put(ctx, fmt.Sprintf("/users/%d", id), fields, &u); err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}

	return &u, nil
}

// DeleteUser removes an account (admin only).
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	if err := c.del(ctx, fmt.Sprintf("/users/%d", id)); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}

	return nil
}

// VerifyUser approves a pending seller account (admin only).
func (c *Client) VerifyUser(ctx context.Context, id int) error {
	if err := c.patch(ctx, fmt.Sprintf("/users/%d/verify", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("verifying user %d: %w", id, err)
	}

	return nil
}

// RejectUser rejects a pending seller account with a reason (admin only).
func (c *Client) RejectUser(ctx context.Context, id int, reason string) error {
	body := map[string]string{"rejection_reason": reason}
	if err := c.post(ctx, fmt.Sprintf("/users/%d/reject", id), body, nil); err != nil {
		return fmt.Errorf("rejecting user %d: %w", id, err)
	}

	return nil
}

// ToggleUserStatus flips an account between active and inactive
// (admin only).
func (c *Client) ToggleUserStatus(ctx context.Context, id int) error {
	if err := c.post(ctx, fmt.Sprintf("/users/%d/toggle-status", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("toggling user %d status: %w", id, err)
	}

	return nil
}

// PendingSellers returns seller accounts awaiting verification
// (admin only).
func (c *Client) PendingSellers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users/pending-sellers", nil, &users); err != nil {
		return nil, fmt.Errorf("listing pending sellers: %w", err)
	}

	return users, nil
}

// UserStats returns the admin dashboard's user breakdown.
func (c *Client) UserStats(ctx context.Context) (*UserStatistics, error) {
	var stats UserStatistics
	if err := c.get(ctx, "/users/statistics", nil, &stats); err != nil {
		return nil, fmt.Errorf("fetching user statistics: %w", err)
	}

	return &stats, nil
}

// UserProperties returns all listings owned by an account.
func (c *Client) UserProperties(ctx context.Context, userID int) ([]Property, error) {
	var props []Property
	if err := c.get(ctx, fmt.Sprintf("/users/%d/properties", userID), nil, &props); err != nil {
		return nil, fmt.Errorf("listing user %d properties: %w", userID, err)
	}

	return props, nil
}
