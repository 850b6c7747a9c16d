package ig

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultResolution is used when a price query names none.
	DefaultResolution = "HOUR"
	// DefaultMaxPrices is used when a price query gives no count.
	DefaultMaxPrices = 100
)

var resolutions = map[string]bool{
	"SECOND": true, "MINUTE": true, "MINUTE_2": true, "MINUTE_3": true,
	"MINUTE_5": true, "MINUTE_10": true, "MINUTE_15": true, "MINUTE_30": true,
	"HOUR": true, "HOUR_2": true, "HOUR_3": true, "HOUR_4": true,
	"DAY": true, "WEEK": true, "MONTH": true,
}

// ValidResolution reports whether res is a price resolution IG accepts.
func ValidResolution(res string) bool {
	return resolutions[res]
}

// SearchMarkets finds markets matching term.
func (c *Client) SearchMarkets(ctx context.Context, term string) (*MarketsResponse, error) {
	var out MarketsResponse
	path := "/markets?searchTerm=" + url.QueryEscape(term)
	if err := c.Send(ctx, http.MethodGet, path, nil, 1, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Market returns the instrument, dealing rules and snapshot for epic.
func (c *Client) Market(ctx context.Context, epic string) (*MarketDetails, error) {
	var out MarketDetails
	if err := c.Send(ctx, http.MethodGet, "/markets/"+url.PathEscape(epic), nil, 3, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Prices returns up to max historical candles for epic at resolution.
// Empty resolution and non-positive max fall back to HOUR and 100.
func (c *Client) Prices(ctx context.Context, epic, resolution string, max int) (*PricesResponse, error) {
	if resolution == "" {
		resolution = DefaultResolution
	}
	if max <= 0 {
		max = DefaultMaxPrices
	}

	q := url.Values{}
	q.Set("resolution", resolution)
	q.Set("max", strconv.Itoa(max))

	var out PricesResponse
	path := "/prices/" + url.PathEscape(epic) + "?" + q.Encode()
	if err := c.Send(ctx, http.MethodGet, path, nil, 3, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
