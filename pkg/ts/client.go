package ts

import (
	"context"
)

// MarketDataClient provides access to market data endpoints.
type MarketDataClient interface {
	GetQuoteSnapshots(ctx context.Context, symbols []string) (*QuoteSnapshotResponse, error)
	GetBars(ctx context.Context, symbol string, params *BarsParams) (*BarsResponse, error)
	GetSymbolDetails(ctx context.Context, symbols []string) (*SymbolDetailsResponse, error)
	GetCryptoSymbolNames(ctx context.Context) (*CryptoSymbolNamesResponse, error)
	GetOptionExpirations(ctx context.Context, underlying string) (*OptionExpirationsResponse, error)

	StreamQuotes(ctx context.Context, symbols []string) (Stream, error)
	StreamBars(ctx context.Context, symbol string, params *BarsParams) (Stream, error)
}

// BrokerageClient provides access to brokerage account endpoints.
type BrokerageClient interface {
	GetAccounts(ctx context.Context) (*AccountsResponse, error)
	GetBalances(ctx context.Context, accountIDs []string) (*BalancesResponse, error)
	GetPositions(ctx context.Context, accountIDs []string, symbolFilter string) (*PositionsResponse, error)
	GetOrders(ctx context.Context, accountIDs []string) (*OrdersResponse, error)
	GetHistoricalOrders(ctx context.Context, accountIDs []string, since string) (*OrdersResponse, error)

	StreamOrders(ctx context.Context, accountIDs []string) (Stream, error)
	StreamPositions(ctx context.Context, accountIDs []string) (Stream, error)
}

// OrderExecutionClient provides access to order execution endpoints.
type OrderExecutionClient interface {
	PlaceOrder(ctx context.Context, request *OrderRequest) (*OrderResponse, error)
	ReplaceOrder(ctx context.Context, orderID string, request *OrderRequest) (*OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string) (*CancelOrderResponse, error)
	ConfirmOrder(ctx context.Context, request *OrderRequest) (*ConfirmOrderResponse, error)
	GetRoutes(ctx context.Context) (*RoutesResponse, error)
	GetActivationTriggers(ctx context.Context) (*ActivationTriggersResponse, error)
}

// Client is the top-level TradeStation API client.
type Client interface {
	MarketData() MarketDataClient
	Brokerage() BrokerageClient
	OrderExecution() OrderExecutionClient

	// AccessToken returns a currently valid access token, refreshing it
	// when needed.
	AccessToken(ctx context.Context) (string, error)

	// RefreshTokenValue returns the current refresh token so callers can
	// persist it across sessions. The value changes when the
	// authorization server rotates the token.
	RefreshTokenValue() string

	// Environment reports which API deployment the client targets.
	Environment() Environment

	// CloseAllStreams closes every stream opened through this client.
	CloseAllStreams() error
}
