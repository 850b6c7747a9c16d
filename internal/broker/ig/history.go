package ig

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	// HistoryWindow is the range used when a history query gives no dates.
	HistoryWindow = 30 * 24 * time.Hour

	historyTimeLayout = "2006-01-02T15:04:05.000Z"
)

// HistoryRange resolves an optional from/to pair. Missing bounds default to
// the trailing HistoryWindow ending at now.
func HistoryRange(from, to string, now time.Time) (string, string) {
	now = now.UTC()
	if from == "" {
		from = now.Add(-HistoryWindow).Format(historyTimeLayout)
	}
	if to == "" {
		to = now.Format(historyTimeLayout)
	}
	return from, to
}

// Activity returns dealing activity between from and to.
func (c *Client) Activity(ctx context.Context, from, to string) (*ActivitiesResponse, error) {
	from, to = HistoryRange(from, to, c.sessions.now())

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	var out ActivitiesResponse
	if err := c.Send(ctx, http.MethodGet, "/history/activity?"+q.Encode(), nil, 3, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transactions returns realised deal transactions between from and to.
func (c *Client) Transactions(ctx context.Context, from, to string) (*TransactionsResponse, error) {
	from, to = HistoryRange(from, to, c.sessions.now())

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("type", "ALL_DEAL")

	var out TransactionsResponse
	if err := c.Send(ctx, http.MethodGet, "/history/transactions?"+q.Encode(), nil, 2, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
