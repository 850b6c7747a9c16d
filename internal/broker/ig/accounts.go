package ig

import (
	"context"
	"net/http"
)

// Accounts lists the accounts of the logged-in client.
func (c *Client) Accounts(ctx context.Context) (*AccountsResponse, error) {
	var out AccountsResponse
	if err := c.Send(ctx, http.MethodGet, "/accounts", nil, 1, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
