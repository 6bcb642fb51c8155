package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewPositionsCommand creates the positions command
func NewPositionsCommand() *cobra.Command {
	var symbolFilter string

	cmd := &cobra.Command{
		Use:   "positions ACCOUNT_ID...",
		Short: "List open positions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Brokerage().GetPositions(cmd.Context(), args, symbolFilter)
			if err != nil {
				return fmt.Errorf("failed to list positions: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Positions) == 0 {
					fmt.Println("No positions found")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Account ID", "Symbol", "Long/Short", "Quantity", "Avg Price", "Last", "Unrealized P/L")

				for _, position := range resp.Positions {
					_ = table.Append(
						position.AccountID,
						position.Symbol,
						orDefault(position.LongShort),
						orDefault(position.Quantity),
						orDefault(position.AveragePrice),
						orDefault(position.Last),
						orDefault(position.UnrealizedProfitLoss),
					)
				}

				_ = table.Render()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&symbolFilter, "symbol", "", "filter positions by symbol")

	return cmd
}
