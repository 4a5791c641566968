package immo

import (
	"context"
	"fmt"
)

// ListProperties returns a page of listings matching the given filters.
func (c *Client) ListProperties(ctx context.Context, params Params) (*Page[Property], error) {
	var page Page[Property]
	if err := c.get(ctx, "/properties", params, &page); err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	return &page, nil
}

// MyProperties returns the authenticated seller's own listings.
func (c *Client) MyProperties(ctx context.Context, params Params) (*Page[Property], error) {
	var page Page[Property]
	if err := c.get(ctx, "/properties/my-properties", params, &page); err != nil {
		return nil, fmt.Errorf("listing own properties: %w", err)
	}

	return &page, nil
}

// GetProperty returns a single listing.
func (c *Client) GetProperty(ctx context.Context, id int) (*Property, error) {
	var p Property
	if err := c.get(ctx, fmt.Sprintf("/properties/%d", id), nil, &p); err != nil {
		return nil, fmt.Errorf("fetching property %d: %w", id, err)
	}

	return &p, nil
}

// CreateProperty submits a new listing. It enters the
// pending_verification status until an admin verifies it.
func (c *Client) CreateProperty(ctx context.Context, req PropertyRequest) (*Property, error) {
	var p Property
	if err := c.post(ctx, "/properties", req, &p); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}

	return &p, nil
}

// UpdateProperty updates an existing listing.
func (c *Client) UpdateProperty(ctx context.Context, id int, req PropertyRequest) (*Property, error) {
	var p Property
	if err := c.put(ctx, fmt.Sprintf("/properties/%d", id), req, &p); err != nil {
		return nil, fmt.Errorf("updating property %d: %w", id, err)
	}

	return &p, nil
}

// DeleteProperty removes a listing.
func (c *Client) DeleteProperty(ctx context.Context, id int) error {
	if err := c.del(ctx, fmt.Sprintf("/properties/%d", id)); err != nil {
		return fmt.Errorf("deleting property %d: %w", id, err)
	}

	return nil
}

// VerifyProperty marks a pending listing as verified (admin only).
func (c *Client) VerifyProperty(ctx context.Context, id int) error {
	if err := c.patch(ctx, fmt.Sprintf("/properties/%d/verify", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("verifying property %d: %w", id, err)
	}

	return nil
}

// RejectProperty rejects a pending listing with a reason (admin only).
func (c *Client) RejectProperty(ctx context.Context, id int, reason string) error {
	body := map[string]string{"rejection_reason": reason}
	if err := c.patch(ctx, fmt.Sprintf("/properties/%d/reject", id), body, nil); err != nil {
		return fmt.Errorf("rejecting property %d: %w", id, err)
	}

	return nil
}

// ListPropertyTypes returns all listing categories.
func (c *Client) ListPropertyTypes(ctx context.Context) ([]PropertyType, error) {
	var types []PropertyType
	if err := c.get(ctx, "/property-types", nil, &types); err != nil {
		return nil, fmt.Errorf("listing property types: %w", err)
	}

	return types, nil
}

// ListPropertyFeatures returns all amenity tags.
func (c *Client) ListPropertyFeatures(ctx context.Context) ([]PropertyFeature, error) {
	var features []PropertyFeature
	if err := c.get(ctx, "/property-features", nil, &features); err != nil {
		return nil, fmt.Errorf("listing property features: %w", err)
	}

	return features, nil
}
