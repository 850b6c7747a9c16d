package ig

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// Positions lists open positions.
func (c *Client) Positions(ctx context.Context) (*PositionsResponse, error) {
	var out PositionsResponse
	if err := c.Send(ctx, http.MethodGet, "/positions", nil, 2, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenPosition opens an OTC position. The order type defaults to MARKET,
// the currency is always EUR and forceOpen is always set. Stop and limit
// distances are forwarded as given.
func (c *Client) OpenPosition(ctx context.Context, p OpenPositionParams) (*DealReference, error) {
	orderType := p.OrderType
	if orderType == "" {
		orderType = OrderMarket
	}

	body := openPositionBody{
		Epic:           p.Epic,
		Direction:      p.Direction,
		Size:           p.Size,
		OrderType:      orderType,
		CurrencyCode:   dealCurrency,
		ForceOpen:      true,
		GuaranteedStop: false,
		StopDistance:   p.StopDistance,
		LimitDistance:  p.LimitDistance,
	}

	var out DealReference
	if err := c.Send(ctx, http.MethodPost, "/positions/otc", body, 2, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClosePosition closes dealID by dealing size in the direction opposite to
// the one the position was opened with.
func (c *Client) ClosePosition(ctx context.Context, dealID string, opened Direction, size decimal.Decimal) (*DealReference, error) {
	body := closePositionBody{
		DealID:    dealID,
		Direction: opened.Opposite(),
		Size:      size,
		OrderType: OrderMarket,
	}

	var out DealReference
	if err := c.Send(ctx, http.MethodPost, "/positions/otc", body, 1, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
