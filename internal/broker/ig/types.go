package ig

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// IG expects plain JSON numbers for sizes, levels and distances.
	decimal.MarshalJSONWithoutQuotes = true
}

// Environment selects the IG gateway.
type Environment string

const (
	EnvDemo Environment = "demo"
	EnvLive Environment = "live"
)

// ParseEnvironment parses "demo" or "live". Empty means demo.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case "", EnvDemo:
		return EnvDemo, nil
	case EnvLive:
		return EnvLive, nil
	default:
		return "", fmt.Errorf("unknown environment %q", s)
	}
}

// Credentials are the user-supplied IG login details.
type Credentials struct {
	APIKey      string
	Username    string
	Password    string
	Environment Environment
}

// Session is the dealing session pair returned by POST /session.
type Session struct {
	CST           string
	SecurityToken string
	ExpiresAt     time.Time
}

// IsStale reports whether the session is inside the refresh margin at now.
func (s *Session) IsStale(now time.Time) bool {
	return !now.Before(s.ExpiresAt.Add(-StaleMargin))
}

// State is the lifecycle state of the session client.
type State int

const (
	StateUnconfigured State = iota
	StateNoSession
	StateSessionValid
	StateSessionStale
)

func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateNoSession:
		return "configured-no-session"
	case StateSessionValid:
		return "configured-session-valid"
	case StateSessionStale:
		return "configured-session-stale"
	default:
		return "unknown"
	}
}

// Direction is a deal direction.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// Valid reports whether d is BUY or SELL.
func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// Opposite returns the closing direction for a position opened with d.
func (d Direction) Opposite() Direction {
	if d == Buy {
		return Sell
	}
	return Buy
}

// OrderType is the execution type of an OTC position request.
type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

// WorkingOrderType is the trigger type of a working order.
type WorkingOrderType string

const (
	WorkingLimit WorkingOrderType = "LIMIT"
	WorkingStop  WorkingOrderType = "STOP"
)

// Valid reports whether t is LIMIT or STOP.
func (t WorkingOrderType) Valid() bool {
	return t == WorkingLimit || t == WorkingStop
}

// AccountsResponse from GET /accounts.
type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// Account represents an IG trading account.
type Account struct {
	AccountID   string  `json:"accountId"`
	AccountName string  `json:"accountName"`
	AccountType string  `json:"accountType"`
	Preferred   bool    `json:"preferred"`
	Status      string  `json:"status,omitempty"`
	Currency    string  `json:"currency"`
	Balance     Balance `json:"balance"`
}

// Balance holds the funds of an account.
type Balance struct {
	Balance    *decimal.Decimal `json:"balance"`
	Deposit    *decimal.Decimal `json:"deposit"`
	ProfitLoss *decimal.Decimal `json:"profitLoss"`
	Available  *decimal.Decimal `json:"available"`
}

// Market is the market summary used by search results and positions.
// Vendor numbers are pointers throughout: IG sends null prices for closed
// markets and the browser must see null, not 0.
type Market struct {
	Epic             string           `json:"epic"`
	InstrumentName   string           `json:"instrumentName"`
	InstrumentType   string           `json:"instrumentType"`
	Expiry           string           `json:"expiry,omitempty"`
	MarketStatus     string           `json:"marketStatus,omitempty"`
	Bid              *decimal.Decimal `json:"bid"`
	Offer            *decimal.Decimal `json:"offer"`
	High             *decimal.Decimal `json:"high"`
	Low              *decimal.Decimal `json:"low"`
	PercentageChange *decimal.Decimal `json:"percentageChange"`
	NetChange        *decimal.Decimal `json:"netChange"`
	UpdateTimeUTC    string           `json:"updateTimeUTC,omitempty"`
}

// MarketsResponse from GET /markets?searchTerm=.
type MarketsResponse struct {
	Markets []Market `json:"markets"`
}

// MarketDetails from GET /markets/{epic} (version 3).
type MarketDetails struct {
	Instrument   Instrument      `json:"instrument"`
	DealingRules json.RawMessage `json:"dealingRules,omitempty"`
	Snapshot     Snapshot        `json:"snapshot"`
}

// Instrument describes a tradeable instrument.
type Instrument struct {
	Epic          string           `json:"epic"`
	Name          string           `json:"name"`
	Type          string           `json:"type"`
	Expiry        string           `json:"expiry,omitempty"`
	MarketID      string           `json:"marketId,omitempty"`
	LotSize       *decimal.Decimal `json:"lotSize"`
	ContractSize  string           `json:"contractSize,omitempty"`
	ValueOfOnePip string           `json:"valueOfOnePip,omitempty"`
}

// Snapshot is the current price snapshot of a market.
type Snapshot struct {
	MarketStatus        string           `json:"marketStatus"`
	Bid                 *decimal.Decimal `json:"bid"`
	Offer               *decimal.Decimal `json:"offer"`
	High                *decimal.Decimal `json:"high"`
	Low                 *decimal.Decimal `json:"low"`
	NetChange           *decimal.Decimal `json:"netChange"`
	PercentageChange    *decimal.Decimal `json:"percentageChange"`
	UpdateTime          string           `json:"updateTime,omitempty"`
	DecimalPlacesFactor int              `json:"decimalPlacesFactor,omitempty"`
}

// PositionsResponse from GET /positions (version 2).
type PositionsResponse struct {
	Positions []PositionEntry `json:"positions"`
}

// PositionEntry pairs an open position with its market.
type PositionEntry struct {
	Position Position `json:"position"`
	Market   Market   `json:"market"`
}

// Position is an open OTC position.
type Position struct {
	DealID         string           `json:"dealId"`
	DealReference  string           `json:"dealReference,omitempty"`
	Direction      Direction        `json:"direction"`
	Size           *decimal.Decimal `json:"size"`
	Level          *decimal.Decimal `json:"level"`
	Currency       string           `json:"currency"`
	ContractSize   *decimal.Decimal `json:"contractSize"`
	CreatedDateUTC string           `json:"createdDateUTC,omitempty"`
	StopLevel      *decimal.Decimal `json:"stopLevel"`
	LimitLevel     *decimal.Decimal `json:"limitLevel"`
}

// DealReference is returned by every dealing call.
type DealReference struct {
	DealReference string `json:"dealReference"`
}

// OpenPositionParams describes a new OTC position.
type OpenPositionParams struct {
	Epic          string
	Direction     Direction
	Size          decimal.Decimal
	OrderType     OrderType
	StopDistance  *decimal.Decimal
	LimitDistance *decimal.Decimal
}

// openPositionBody is the vendor payload for POST /positions/otc.
type openPositionBody struct {
	Epic           string           `json:"epic"`
	Direction      Direction        `json:"direction"`
	Size           decimal.Decimal  `json:"size"`
	OrderType      OrderType        `json:"orderType"`
	CurrencyCode   string           `json:"currencyCode"`
	ForceOpen      bool             `json:"forceOpen"`
	GuaranteedStop bool             `json:"guaranteedStop"`
	StopDistance   *decimal.Decimal `json:"stopDistance,omitempty"`
	LimitDistance  *decimal.Decimal `json:"limitDistance,omitempty"`
}

// closePositionBody closes a position by dealing the opposite direction.
type closePositionBody struct {
	DealID    string          `json:"dealId"`
	Direction Direction       `json:"direction"`
	Size      decimal.Decimal `json:"size"`
	OrderType OrderType       `json:"orderType"`
}

// WorkingOrdersResponse from GET /workingorders (version 2).
// Orders are passed through untouched.
type WorkingOrdersResponse struct {
	WorkingOrders []json.RawMessage `json:"workingOrders"`
}

// WorkingOrderParams describes a new working order.
type WorkingOrderParams struct {
	Epic      string
	Direction Direction
	Size      decimal.Decimal
	Level     decimal.Decimal
	Type      WorkingOrderType
}

type workingOrderBody struct {
	Epic           string           `json:"epic"`
	Direction      Direction        `json:"direction"`
	Size           decimal.Decimal  `json:"size"`
	Level          decimal.Decimal  `json:"level"`
	Type           WorkingOrderType `json:"type"`
	CurrencyCode   string           `json:"currencyCode"`
	TimeInForce    string           `json:"timeInForce"`
	GuaranteedStop bool             `json:"guaranteedStop"`
}

// PricesResponse from GET /prices/{epic} (version 3).
type PricesResponse struct {
	Prices         []Candle        `json:"prices"`
	InstrumentType string          `json:"instrumentType,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// Candle is one historical price bar.
type Candle struct {
	SnapshotTime     string     `json:"snapshotTime"`
	SnapshotTimeUTC  string     `json:"snapshotTimeUTC,omitempty"`
	OpenPrice        PriceLevel `json:"openPrice"`
	ClosePrice       PriceLevel `json:"closePrice"`
	HighPrice        PriceLevel `json:"highPrice"`
	LowPrice         PriceLevel `json:"lowPrice"`
	LastTradedVolume int64      `json:"lastTradedVolume"`
}

// PriceLevel is a bid/ask pair. LastTraded is only set for exchange-traded markets.
type PriceLevel struct {
	Bid        *decimal.Decimal `json:"bid"`
	Ask        *decimal.Decimal `json:"ask"`
	LastTraded *decimal.Decimal `json:"lastTraded"`
}

// ActivitiesResponse from GET /history/activity (version 3).
type ActivitiesResponse struct {
	Activities []Activity      `json:"activities"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// Activity is a dealing event such as an opened or closed position.
type Activity struct {
	Date        string           `json:"date"`
	DealID      string           `json:"dealId"`
	Epic        string           `json:"epic"`
	Period      string           `json:"period"`
	Channel     string           `json:"channel"`
	Type        string           `json:"type"`
	Status      string           `json:"status"`
	Description string           `json:"description"`
	Details     *ActivityDetails `json:"details,omitempty"`
}

// ActivityDetails holds the deal specifics of an activity.
type ActivityDetails struct {
	DealReference  string           `json:"dealReference"`
	Direction      Direction        `json:"direction"`
	Size           *decimal.Decimal `json:"size"`
	Level          *decimal.Decimal `json:"level"`
	GoodTillDate   string           `json:"goodTillDate,omitempty"`
	Currency       string           `json:"currency"`
	Profit         *decimal.Decimal `json:"profit"`
	ProfitCurrency string           `json:"profitCurrency,omitempty"`
}

// TransactionsResponse from GET /history/transactions (version 2).
type TransactionsResponse struct {
	Transactions []Transaction   `json:"transactions"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// Transaction is a realised P/L entry. IG formats the numeric fields as strings.
type Transaction struct {
	Date            string `json:"date"`
	DateUTC         string `json:"dateUtc,omitempty"`
	OpenDateUTC     string `json:"openDateUtc"`
	CloseDateUTC    string `json:"closeDateUtc,omitempty"`
	Reference       string `json:"reference"`
	InstrumentName  string `json:"instrumentName"`
	Period          string `json:"period"`
	ProfitAndLoss   string `json:"profitAndLoss"`
	TransactionType string `json:"transactionType"`
	CashTransaction bool   `json:"cashTransaction"`
	Size            string `json:"size"`
	OpenLevel       string `json:"openLevel"`
	CloseLevel      string `json:"closeLevel"`
	Currency        string `json:"currency"`
}

// vendorErrorBody is the best-effort shape of an IG error response.
type vendorErrorBody struct {
	ErrorCode string `json:"errorCode"`
}
