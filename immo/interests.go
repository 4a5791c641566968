package immo

import (
	"context"
	"fmt"
)

// ListInterests returns a page of property interests visible to the
// authenticated user.
func (c *Client) ListInterests(ctx context.Context, params Params) (*Page[PropertyInterest], error) {
	var page Page[PropertyInterest]
	if err := c.get(ctx, "/property-interests", params, &page); err != nil {
		return nil, fmt.Errorf("listing property interests: %w", err)
	}

	return &page, nil
}

// GetInterest returns a single interest.
func (c *Client) GetInterest(ctx context.Context, id int) (*PropertyInterest, error) {
	var pi PropertyInterest
	if err := c.get(ctx, fmt.Sprintf("/property-interests/%d", id), nil, &pi); err != nil {
		return nil, fmt.Errorf("fetching interest %d: %w", id, err)
	}

	return &pi, nil
}

// DeclareInterest registers the buyer's interest in a listing.
func (c *Client) DeclareInterest(ctx context.Context, propertyID int, message string) (*PropertyInterest, error) {
	body := map[string]any{"property_id": propertyID, "message": message}

	var pi PropertyInterest
	if err := c.post(ctx, "/property-interests", body, &pi); err != nil {
		return nil, fmt.Errorf("declaring interest in property %d: %w", propertyID, err)
	}

	return &pi, nil
}

// UpdateInterest updates an interest's status or message.
func (c *Client) UpdateInterest(ctx context.Context, id int, fields map[string]any) (*PropertyInterest, error) {
	var pi PropertyInterest
	if err := c.patch(ctx, fmt.Sprintf("/property-interests/%d", id), fields, &pi); err != nil {
		return nil, fmt.Errorf("updating interest %d: %w", id, err)
	}

	return &pi, nil
}

// WithdrawInterest removes an interest.
func (c *Client) WithdrawInterest(ctx context.Context, id int) error {
	if err := c.del(ctx, fmt.Sprintf("/property-interests/%d", id)); err != nil {
		return fmt.Errorf("withdrawing interest %d: %w", id, err)
	}

	return nil
}

// InterestStats returns the interest dashboard breakdown.
func (c *Client) InterestStats(ctx context.Context) (*InterestStatistics, error) {
	var stats InterestStatistics
	if err := c.get(ctx, "/property-interests/statistics", nil, &stats); err != nil {
		return nil, fmt.Errorf("fetching interest statistics: %w", err)
	}

	return &stats, nil
}
