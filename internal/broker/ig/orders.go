package ig

import (
	"context"
	"net/http"
	"net/url"
)

// WorkingOrders lists pending orders.
func (c *Client) WorkingOrders(ctx context.Context) (*WorkingOrdersResponse, error) {
	var out WorkingOrdersResponse
	if err := c.Send(ctx, http.MethodGet, "/workingorders", nil, 2, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWorkingOrder places a good-till-cancelled working order in EUR.
func (c *Client) CreateWorkingOrder(ctx context.Context, p WorkingOrderParams) (*DealReference, error) {
	body := workingOrderBody{
		Epic:           p.Epic,
		Direction:      p.Direction,
		Size:           p.Size,
		Level:          p.Level,
		Type:           p.Type,
		CurrencyCode:   dealCurrency,
		TimeInForce:    "GOOD_TILL_CANCELLED",
		GuaranteedStop: false,
	}

	var out DealReference
	if err := c.Send(ctx, http.MethodPost, "/workingorders/otc", body, 2, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelWorkingOrder deletes the working order dealID.
func (c *Client) CancelWorkingOrder(ctx context.Context, dealID string) (*DealReference, error) {
	var out DealReference
	path := "/workingorders/otc/" + url.PathEscape(dealID)
	if err := c.Send(ctx, http.MethodDelete, path, nil, 2, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
