// Package ts defines the public surface of the TradeStation API client:
// configuration, the client interface, domain types, the typed error
// taxonomy, stream events, response caching, and request interceptors.
//
// Construct clients with github.com/fivetwenty-io/tradestation-client/pkg/tsclient.
package ts
