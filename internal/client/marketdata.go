package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// MarketDataClient implements ts.MarketDataClient.
type MarketDataClient struct {
	client *Client
}

// NewMarketDataClient creates a new market data client.
func NewMarketDataClient(client *Client) *MarketDataClient {
	return &MarketDataClient{client: client}
}

// GetQuoteSnapshots implements ts.MarketDataClient.GetQuoteSnapshots.
func (c *MarketDataClient) GetQuoteSnapshots(ctx context.Context, symbols []string) (*ts.QuoteSnapshotResponse, error) {
	if len(symbols) == 0 {
		return nil, ts.ErrNoSymbols
	}

	path := "/v3/marketdata/quotes/" + url.PathEscape(strings.Join(symbols, ","))

	body, err := c.client.cachedGet(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting quote snapshots: %w", err)
	}

	var result ts.QuoteSnapshotResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing quote snapshots response: %w", err)
	}

	return &result, nil
}

// GetBars implements ts.MarketDataClient.GetBars.
func (c *MarketDataClient) GetBars(ctx context.Context, symbol string, params *ts.BarsParams) (*ts.BarsResponse, error) {
	if symbol == "" {
		return nil, ts.ErrSymbolRequired
	}

	path := "/v3/marketdata/barcharts/" + url.PathEscape(symbol)

	resp, err := c.client.httpClient.Get(ctx, path, barsQuery(params))
	if err != nil {
		return nil, fmt.Errorf("getting bars: %w", err)
	}

	var result ts.BarsResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing bars response: %w", err)
	}

	return &result, nil
}

// GetSymbolDetails implements ts.MarketDataClient.GetSymbolDetails.
func (c *MarketDataClient) GetSymbolDetails(ctx context.Context, symbols []string) (*ts.SymbolDetailsResponse, error) {
	if len(symbols) == 0 {
		return nil, ts.ErrNoSymbols
	}

	path := "/v3/marketdata/symbols/" + url.PathEscape(strings.Join(symbols, ","))

	body, err := c.client.cachedGet(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting symbol details: %w", err)
	}

	var result ts.SymbolDetailsResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing symbol details response: %w", err)
	}

	return &result, nil
}

// GetCryptoSymbolNames implements ts.MarketDataClient.GetCryptoSymbolNames.
func (c *MarketDataClient) GetCryptoSymbolNames(ctx context.Context) (*ts.CryptoSymbolNamesResponse, error) {
	body, err := c.client.cachedGet(ctx, "/v3/marketdata/symbollists/cryptopairs/symbolnames", nil)
	if err != nil {
		return nil, fmt.Errorf("getting crypto symbol names: %w", err)
	}

	var result ts.CryptoSymbolNamesResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing crypto symbol names response: %w", err)
	}

	return &result, nil
}

// GetOptionExpirations implements ts.MarketDataClient.GetOptionExpirations.
func (c *MarketDataClient) GetOptionExpirations(ctx context.Context, underlying string) (*ts.OptionExpirationsResponse, error) {
	if underlying == "" {
		return nil, ts.ErrSymbolRequired
	}

	path := "/v3/marketdata/options/expirations/" + url.PathEscape(underlying)

	resp, err := c.client.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting option expirations: %w", err)
	}

	var result ts.OptionExpirationsResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing option expirations response: %w", err)
	}

	return &result, nil
}

// StreamQuotes implements ts.MarketDataClient.StreamQuotes.
func (c *MarketDataClient) StreamQuotes(ctx context.Context, symbols []string) (ts.Stream, error) {
	if len(symbols) == 0 {
		return nil, ts.ErrNoSymbols
	}

	path := "/v3/marketdata/stream/quotes/" + url.PathEscape(strings.Join(symbols, ","))

	return c.client.openStream(ctx, path, nil)
}

// StreamBars implements ts.MarketDataClient.StreamBars.
func (c *MarketDataClient) StreamBars(ctx context.Context, symbol string, params *ts.BarsParams) (ts.Stream, error) {
	if symbol == "" {
		return nil, ts.ErrSymbolRequired
	}

	path := "/v3/marketdata/stream/barcharts/" + url.PathEscape(symbol)

	return c.client.openStream(ctx, path, barsQuery(params))
}

// barsQuery converts bar chart parameters into query values.
func barsQuery(params *ts.BarsParams) url.Values {
	if params == nil {
		return nil
	}

	query := url.Values{}

	if params.Interval != "" {
		query.Set("interval", params.Interval)
	}

	if params.Unit != "" {
		query.Set("unit", params.Unit)
	}

	if params.BarsBack > 0 {
		query.Set("barsback", strconv.Itoa(params.BarsBack))
	}

	if params.FirstDate != "" {
		query.Set("firstdate", params.FirstDate)
	}

	if params.LastDate != "" {
		query.Set("lastdate", params.LastDate)
	}

	if params.SessionTemplate != "" {
		query.Set("sessiontemplate", params.SessionTemplate)
	}

	return query
}
