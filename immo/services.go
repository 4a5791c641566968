package immo

import (
	"context"
	"fmt"
)

// ListServices returns a page of platform services.
func (c *Client) ListServices(ctx context.Context, params Params) (*Page[Service], error) {
	var page Page[Service]
	if err := c.get(ctx, "/services", params, &page); err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}

	return &page, nil
}

// GetService returns a single service.
func (c *Client) GetService(ctx context.Context, id int) (*Service, error) {
	var s Service
	if err := c.get(ctx, fmt.Sprintf("/services/%d", id), nil, &s); err != nil {
		return nil, fmt.Errorf("fetching service %d: %w", id, err)
	}

	return &s, nil
}

// CreateService creates a service (admin only).
func (c *Client) CreateService(ctx context.Context, fields map[string]any) (*Service, error) {
	var s Service
	if err := c.post(ctx, "/services", fields, &s); err != nil {
		return nil, fmt.Errorf("creating service: %w", err)
	}

	return &s, nil
}

// UpdateService updates a service (admin only).
func (c *Client) UpdateService(ctx context.Context, id int, fields map[string]any) (*Service, error) {
	var s Service
	if err := c.patch(ctx, fmt.Sprintf("/services/%d", id), fields, &s); err != nil {
		return nil, fmt.Errorf("updating service %d: %w", id, err)
	}

	return &s, nil
}

// DeleteService removes a service (admin only).
func (c *Client) DeleteService(ctx context.Context, id int) error {
	if err := c.del(ctx, fmt.Sprintf("/services/%d", id)); err != nil {
		return fmt.Errorf("deleting service %d: %w", id, err)
	}

	return nil
}

// ToggleServiceStatus flips a service between active and inactive
// (admin only).
func (c *Client) ToggleServiceStatus(ctx context.Context, id int) error {
	if err := c.patch(ctx, fmt.Sprintf("/services/%d/toggle-status", id), struct{}{}, nil); err != nil {
		return fmt.Errorf("toggling service %d status: %w", id, err)
	}

	return nil
}

// ListServiceRequests returns a page of service requests visible to
// the authenticated user.
func (c *Client) ListServiceRequests(ctx context.Context, params Params) (*Page[ServiceRequest], error) {
	var page Page[ServiceRequest]
	if err := c.get(ctx, "/service-requests", params, &page); err != nil {
		return nil, fmt.Errorf("listing service requests: %w", err)
	}

	return &page, nil
}

// GetServiceRequest returns a single service request.
func (c *Client) GetServiceRequest(ctx context.Context, id int) (*ServiceRequest, error) {
	var sr ServiceRequest
	if err := c.get(ctx, fmt.Sprintf("/service-requests/%d", id), nil, &sr); err != nil {
		return nil, fmt.Errorf("fetching service request %d: %w", id, err)
	}

	return &sr, nil
}

// CreateServiceRequest submits a request for a service.
func (c *Client) CreateServiceRequest(ctx context.Context, fields map[string]any) (*ServiceRequest, error) {
	var sr ServiceRequest
	if err := c.post(ctx, "/service-requests", fields, &sr); err != nil {
		return nil, fmt.Errorf("creating service request: %w", err)
	}

	return &sr, nil
}

// UpdateServiceRequest updates a pending request.
func (c *Client) UpdateServiceRequest(ctx context.Context, id int, fields map[string]any) (*ServiceRequest, error) {
	var sr ServiceRequest
	if err := c.patch(ctx, fmt.Sprintf("/service-requests/%d", id), fields, &sr); err != nil {
		return nil, fmt.Errorf("updating service request %d: %w", id, err)
	}

	return &sr, nil
}

// DeleteServiceRequest cancels a request.
func (c *Client) DeleteServiceRequest(ctx context.Context, id int) error {
	if err := c.del(ctx, fmt.Sprintf("/service-requests/%d", id)); err != nil {
		return fmt.Errorf("deleting service request %d: %w", id, err)
	}

	return nil
}

// SetServiceRequestStatus moves a request through its workflow
// (admin only).
func (c *Client) SetServiceRequestStatus(ctx context.Context, id int, status, notes string) error {
	body := map[string]string{"status": status, "notes": notes}
	if err := c.patch(ctx, fmt.Sprintf("/service-requests/%d/status", id), body, nil); err != nil {
		return fmt.Errorf("updating service request %d status: %w", id, err)
	}

	return nil
}

// QuoteServiceRequest attaches a price quote to a request (admin only).
func (c *Client) QuoteServiceRequest(ctx context.Context, id int, price float64, notes string) error {
	body := map[string]any{"quoted_price": price, "notes": notes}
	if err := c.post(ctx, fmt.Sprintf("/service-requests/%d/quote", id), body, nil); err != nil {
		return fmt.Errorf("quoting service request %d: %w", id, err)
	}

	return nil
}

// RespondToQuote accepts or declines a quote on the requester's behalf.
// action is "accept" or "decline".
func (c *Client) RespondToQuote(ctx context.Context, id int, action, notes string) error {
	body := map[string]string{"action": action, "notes": notes}
	if err := c.post(ctx, fmt.Sprintf("/service-requests/%d/respond-quote", id), body, nil); err != nil {
		return fmt.Errorf("responding to quote on request %d: %w", id, err)
	}

	return nil
}
