package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewQuoteCommand creates the quote command
func NewQuoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quote SYMBOL...",
		Aliases: []string{"quotes"},
		Short:   "Get quote snapshots",
		Long:    "Fetch quote snapshots for one or more symbols",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.MarketData().GetQuoteSnapshots(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to get quotes: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Quotes) == 0 {
					fmt.Println("No quotes returned")
				} else {
					table := tablewriter.NewWriter(os.Stdout)
					table.Header("Symbol", "Last", "Bid", "Ask", "Net Change", "Volume", "Trade Time")

					for _, quote := range resp.Quotes {
						_ = table.Append(
							quote.Symbol,
							orDefault(quote.Last),
							orDefault(quote.Bid),
							orDefault(quote.Ask),
							orDefault(quote.NetChange),
							orDefault(quote.Volume),
							orDefault(quote.TradeTime),
						)
					}

					_ = table.Render()
				}

				for _, quoteErr := range resp.Errors {
					fmt.Fprintf(os.Stderr, "warning: %s: %s\n", quoteErr.Symbol, quoteErr.Error)
				}
			}

			return nil
		},
	}

	return cmd
}
