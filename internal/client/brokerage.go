package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// BrokerageClient implements ts.BrokerageClient.
type BrokerageClient struct {
	client *Client
}

// NewBrokerageClient creates a new brokerage client.
func NewBrokerageClient(client *Client) *BrokerageClient {
	return &BrokerageClient{client: client}
}

// GetAccounts implements ts.BrokerageClient.GetAccounts.
func (c *BrokerageClient) GetAccounts(ctx context.Context) (*ts.AccountsResponse, error) {
	resp, err := c.client.httpClient.Get(ctx, "/v3/brokerage/accounts", nil)
	if err != nil {
		return nil, fmt.Errorf("getting accounts: %w", err)
	}

	var result ts.AccountsResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing accounts response: %w", err)
	}

	return &result, nil
}

// GetBalances implements ts.BrokerageClient.GetBalances.
func (c *BrokerageClient) GetBalances(ctx context.Context, accountIDs []string) (*ts.BalancesResponse, error) {
	if len(accountIDs) == 0 {
		return nil, ts.ErrNoAccountIDs
	}

	path := "/v3/brokerage/accounts/" + url.PathEscape(strings.Join(accountIDs, ",")) + "/balances"

	resp, err := c.client.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting balances: %w", err)
	}

	var result ts.BalancesResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing balances response: %w", err)
	}

	return &result, nil
}

// GetPositions implements ts.BrokerageClient.GetPositions.
func (c *BrokerageClient) GetPositions(ctx context.Context, accountIDs []string, symbolFilter string) (*ts.PositionsResponse, error) {
	if len(accountIDs) == 0 {
		return nil, ts.ErrNoAccountIDs
	}

	path := "/v3/brokerage/accounts/" + url.PathEscape(strings.Join(accountIDs, ",")) + "/positions"

	var query url.Values

	if symbolFilter != "" {
		query = url.Values{"symbol": []string{symbolFilter}}
	}

	resp, err := c.client.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("getting positions: %w", err)
	}

	var result ts.PositionsResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing positions response: %w", err)
	}

	return &result, nil
}

// GetOrders implements ts.BrokerageClient.GetOrders.
func (c *BrokerageClient) GetOrders(ctx context.Context, accountIDs []string) (*ts.OrdersResponse, error) {
	if len(accountIDs) == 0 {
		return nil, ts.ErrNoAccountIDs
	}

	path := "/v3/brokerage/accounts/" + url.PathEscape(strings.Join(accountIDs, ",")) + "/orders"

	resp, err := c.client.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting orders: %w", err)
	}

	var result ts.OrdersResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing orders response: %w", err)
	}

	return &result, nil
}

// GetHistoricalOrders implements ts.BrokerageClient.GetHistoricalOrders.
func (c *BrokerageClient) GetHistoricalOrders(ctx context.Context, accountIDs []string, since string) (*ts.OrdersResponse, error) {
	if len(accountIDs) == 0 {
		return nil, ts.ErrNoAccountIDs
	}

	path := "/v3/brokerage/accounts/" + url.PathEscape(strings.Join(accountIDs, ",")) + "/historicalorders"

	var query url.Values

	if since != "" {
		query = url.Values{"since": []string{since}}
	}

	resp, err := c.client.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("getting historical orders: %w", err)
	}

	var result ts.OrdersResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing historical orders response: %w", err)
	}

	return &result, nil
}

// StreamOrders implements ts.BrokerageClient.StreamOrders.
func (c *BrokerageClient) StreamOrders(ctx context.Context, accountIDs []string) (ts.Stream, error) {
	if len(accountIDs) == 0 {
		return nil, ts.ErrNoAccountIDs
	}

	path := "/v3/brokerage/stream/accounts/" + url.PathEscape(strings.Join(accountIDs, ",")) + "/orders"

	return c.client.openStream(ctx, path, nil)
}

// StreamPositions implements ts.BrokerageClient.StreamPositions.
func (c *BrokerageClient) StreamPositions(ctx context.Context, accountIDs []string) (ts.Stream, error) {
	if len(accountIDs) == 0 {
		return nil, ts.ErrNoAccountIDs
	}

	path := "/v3/brokerage/stream/accounts/" + url.PathEscape(strings.Join(accountIDs, ",")) + "/positions"

	return c.client.openStream(ctx, path, nil)
}
