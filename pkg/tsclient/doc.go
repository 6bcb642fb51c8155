// Package tsclient provides the main entry point for creating TradeStation
// API clients.
//
// Basic usage:
//
//	client, err := tsclient.New(ctx, &ts.Config{
//		ClientID:     "your-client-id",
//		RefreshToken: "your-refresh-token",
//		Environment:  ts.EnvironmentSimulation,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	quotes, err := client.MarketData().GetQuoteSnapshots(ctx, []string{"MSFT"})
//
// Credentials left empty in the config are read from the CLIENT_ID,
// CLIENT_SECRET, REFRESH_TOKEN, and ENVIRONMENT environment variables.
package tsclient
