package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewBalancesCommand creates the balances command
func NewBalancesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balances ACCOUNT_ID...",
		Short: "Get account balances",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Brokerage().GetBalances(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to get balances: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Balances) == 0 {
					fmt.Println("No balances returned")
				} else {
					table := tablewriter.NewWriter(os.Stdout)
					table.Header("Account ID", "Cash", "Equity", "Market Value", "Buying Power", "Today's P/L")

					for _, balance := range resp.Balances {
						_ = table.Append(
							balance.AccountID,
							orDefault(balance.CashBalance),
							orDefault(balance.Equity),
							orDefault(balance.MarketValue),
							orDefault(balance.BuyingPower),
							orDefault(balance.TodaysProfitLoss),
						)
					}

					_ = table.Render()
				}

				for _, balErr := range resp.Errors {
					fmt.Fprintf(os.Stderr, "warning: %s: %s\n", balErr.AccountID, balErr.Message)
				}
			}

			return nil
		},
	}
}
