// Package tsclient provides the main entry point for creating TradeStation API clients
package tsclient

import (
	"context"
	"fmt"
	"os"

	"github.com/fivetwenty-io/tradestation-client/internal/client"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// New creates a new TradeStation API client from config, filling missing
// credentials from the environment.
func New(ctx context.Context, config *ts.Config) (ts.Client, error) {
	if config == nil {
		return nil, ts.ErrConfigRequired
	}

	applyEnvDefaults(config)

	if config.ClientID == "" {
		return nil, ts.ErrClientIDRequired
	}

	if config.RefreshToken == "" {
		return nil, ts.ErrRefreshTokenRequired
	}

	if config.Environment == "" {
		return nil, ts.ErrEnvironmentRequired
	}

	tsClient, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return tsClient, nil
}

// applyEnvDefaults fills unset credential fields from the process
// environment.
func applyEnvDefaults(config *ts.Config) {
	if config.ClientID == "" {
		config.ClientID = os.Getenv("CLIENT_ID")
	}

	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("CLIENT_SECRET")
	}

	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("REFRESH_TOKEN")
	}

	if config.Environment == "" {
		if env := os.Getenv("ENVIRONMENT"); env != "" {
			config.Environment = ts.ParseEnvironment(env)
		}
	}
}

// NewSimulation creates a client targeting the simulation deployment.
func NewSimulation(ctx context.Context, clientID, refreshToken string) (ts.Client, error) {
	return New(ctx, &ts.Config{
		ClientID:     clientID,
		RefreshToken: refreshToken,
		Environment:  ts.EnvironmentSimulation,
	})
}

// NewLive creates a client targeting the live deployment.
func NewLive(ctx context.Context, clientID, refreshToken string) (ts.Client, error) {
	return New(ctx, &ts.Config{
		ClientID:     clientID,
		RefreshToken: refreshToken,
		Environment:  ts.EnvironmentLive,
	})
}

// NewFromEnv creates a client entirely from environment variables.
func NewFromEnv(ctx context.Context) (ts.Client, error) {
	return New(ctx, &ts.Config{})
}
