package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewSymbolsCommand creates the symbols command group
func NewSymbolsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "symbols",
		Aliases: []string{"symbol"},
		Short:   "Look up symbols",
		Long:    "Symbol details, crypto pairs, and option expirations",
	}

	cmd.AddCommand(newSymbolDetailsCommand())
	cmd.AddCommand(newCryptoPairsCommand())
	cmd.AddCommand(newOptionExpirationsCommand())

	return cmd
}

func newSymbolDetailsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "details SYMBOL...",
		Short: "Get symbol details",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.MarketData().GetSymbolDetails(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to get symbol details: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Symbols) == 0 {
					fmt.Println("No symbols found")
				} else {
					table := tablewriter.NewWriter(os.Stdout)
					table.Header("Symbol", "Asset Type", "Description", "Exchange", "Currency")

					for _, detail := range resp.Symbols {
						_ = table.Append(
							detail.Symbol,
							detail.AssetType,
							orDefault(detail.Description),
							orDefault(detail.Exchange),
							orDefault(detail.Currency),
						)
					}

					_ = table.Render()
				}

				for _, symErr := range resp.Errors {
					fmt.Fprintf(os.Stderr, "warning: %s: %s\n", symErr.Symbol, symErr.Error)
				}
			}

			return nil
		},
	}
}

func newCryptoPairsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crypto",
		Short: "List supported crypto pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.MarketData().GetCryptoSymbolNames(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get crypto pairs: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				for _, name := range resp.SymbolNames {
					fmt.Println(name)
				}
			}

			return nil
		},
	}
}

func newOptionExpirationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expirations UNDERLYING",
		Short: "List option expirations for an underlying",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.MarketData().GetOptionExpirations(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get option expirations: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Expirations) == 0 {
					fmt.Println("No expirations found")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Date", "Type")

				for _, expiration := range resp.Expirations {
					_ = table.Append(expiration.Date, expiration.Type)
				}

				_ = table.Render()
			}

			return nil
		},
	}
}
