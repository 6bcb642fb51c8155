package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// OrderExecutionClient implements ts.OrderExecutionClient.
type OrderExecutionClient struct {
	client *Client
}

// NewOrderExecutionClient creates a new order execution client.
func NewOrderExecutionClient(client *Client) *OrderExecutionClient {
	return &OrderExecutionClient{client: client}
}

// PlaceOrder implements ts.OrderExecutionClient.PlaceOrder.
func (c *OrderExecutionClient) PlaceOrder(ctx context.Context, request *ts.OrderRequest) (*ts.OrderResponse, error) {
	if request == nil {
		return nil, ts.ErrOrderRequestRequired
	}

	resp, err := c.client.httpClient.Post(ctx, "/v3/orderexecution/orders", request)
	if err != nil {
		return nil, fmt.Errorf("placing order: %w", err)
	}

	var result ts.OrderResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing place order response: %w", err)
	}

	return &result, nil
}

// ReplaceOrder implements ts.OrderExecutionClient.ReplaceOrder.
func (c *OrderExecutionClient) ReplaceOrder(ctx context.Context, orderID string, request *ts.OrderRequest) (*ts.OrderResponse, error) {
	if orderID == "" {
		return nil, ts.ErrOrderIDRequired
	}

	if request == nil {
		return nil, ts.ErrOrderRequestRequired
	}

	path := "/v3/orderexecution/orders/" + url.PathEscape(orderID)

	resp, err := c.client.httpClient.Put(ctx, path, request)
	if err != nil {
		return nil, fmt.Errorf("replacing order: %w", err)
	}

	var result ts.OrderResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing replace order response: %w", err)
	}

	return &result, nil
}

// CancelOrder implements ts.OrderExecutionClient.CancelOrder.
func (c *OrderExecutionClient) CancelOrder(ctx context.Context, orderID string) (*ts.CancelOrderResponse, error) {
	if orderID == "" {
		return nil, ts.ErrOrderIDRequired
	}

	path := "/v3/orderexecution/orders/" + url.PathEscape(orderID)

	resp, err := c.client.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("canceling order: %w", err)
	}

	var result ts.CancelOrderResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing cancel order response: %w", err)
	}

	return &result, nil
}

// ConfirmOrder implements ts.OrderExecutionClient.ConfirmOrder.
func (c *OrderExecutionClient) ConfirmOrder(ctx context.Context, request *ts.OrderRequest) (*ts.ConfirmOrderResponse, error) {
	if request == nil {
		return nil, ts.ErrOrderRequestRequired
	}

	resp, err := c.client.httpClient.Post(ctx, "/v3/orderexecution/orderconfirm", request)
	if err != nil {
		return nil, fmt.Errorf("confirming order: %w", err)
	}

	var result ts.ConfirmOrderResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing confirm order response: %w", err)
	}

	return &result, nil
}

// GetRoutes implements ts.OrderExecutionClient.GetRoutes.
func (c *OrderExecutionClient) GetRoutes(ctx context.Context) (*ts.RoutesResponse, error) {
	body, err := c.client.cachedGet(ctx, "/v3/orderexecution/routes", nil)
	if err != nil {
		return nil, fmt.Errorf("getting routes: %w", err)
	}

	var result ts.RoutesResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing routes response: %w", err)
	}

	return &result, nil
}

// GetActivationTriggers implements ts.OrderExecutionClient.GetActivationTriggers.
func (c *OrderExecutionClient) GetActivationTriggers(ctx context.Context) (*ts.ActivationTriggersResponse, error) {
	body, err := c.client.cachedGet(ctx, "/v3/orderexecution/activationtriggers", nil)
	if err != nil {
		return nil, fmt.Errorf("getting activation triggers: %w", err)
	}

	var result ts.ActivationTriggersResponse

	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing activation triggers response: %w", err)
	}

	return &result, nil
}
