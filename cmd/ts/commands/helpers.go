package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
	"github.com/fivetwenty-io/tradestation-client/pkg/tsclient"
)

// Output formats.
const (
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"

	NotAvailable = "N/A"

	defaultJSONIndent = "  "
)

// Common static errors used throughout the commands package.
var (
	ErrNotLoggedIn        = errors.New("not logged in: run 'ts login' or set TS_CLIENT_ID and TS_REFRESH_TOKEN")
	ErrSymbolArgRequired  = errors.New("at least one symbol is required")
	ErrAccountArgRequired = errors.New("at least one account ID is required")
)

// createClient builds a ts.Client from viper-resolved configuration.
func createClient(ctx context.Context) (ts.Client, error) {
	clientID := viper.GetString("client_id")
	refreshToken := viper.GetString("refresh_token")

	if clientID == "" || refreshToken == "" {
		// tsclient.New falls back to CLIENT_ID / REFRESH_TOKEN when the
		// config leaves them empty, so partial viper config is fine here.
		if os.Getenv("CLIENT_ID") == "" && clientID == "" {
			return nil, ErrNotLoggedIn
		}
	}

	config := &ts.Config{
		ClientID:     clientID,
		ClientSecret: viper.GetString("client_secret"),
		RefreshToken: refreshToken,
		Environment:  ts.ParseEnvironment(viper.GetString("environment")),
	}

	client, err := tsclient.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", defaultJSONIndent)

	return encoder.Encode(v)
}

// outputYAML writes v to stdout as YAML.
func outputYAML(v interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)

	return encoder.Encode(v)
}

// configFilePath returns the CLI config file location, creating the
// directory when needed.
func configFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	configDir := filepath.Join(home, ".ts")

	err = os.MkdirAll(configDir, 0o750)
	if err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

// persistConfig writes the current credential set to the CLI config file.
func persistConfig(clientID, clientSecret, refreshToken, environment string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	data := map[string]string{
		"client_id":     clientID,
		"refresh_token": refreshToken,
		"environment":   environment,
	}
	if clientSecret != "" {
		data["client_secret"] = clientSecret
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	err = os.WriteFile(path, out, 0o600)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// orDefault returns s, or NotAvailable when s is empty.
func orDefault(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}
