package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// NewBarsCommand creates the bars command
func NewBarsCommand() *cobra.Command {
	var (
		interval        string
		unit            string
		barsBack        int
		firstDate       string
		lastDate        string
		sessionTemplate string
	)

	cmd := &cobra.Command{
		Use:   "bars SYMBOL",
		Short: "Get bar chart data",
		Long:  "Fetch OHLCV bars for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			params := &ts.BarsParams{
				Interval:        interval,
				Unit:            unit,
				BarsBack:        barsBack,
				FirstDate:       firstDate,
				LastDate:        lastDate,
				SessionTemplate: sessionTemplate,
			}

			resp, err := client.MarketData().GetBars(cmd.Context(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to get bars: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Bars) == 0 {
					fmt.Println("No bars returned")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Time", "Open", "High", "Low", "Close", "Volume")

				for _, bar := range resp.Bars {
					_ = table.Append(
						bar.TimeStamp,
						bar.Open,
						bar.High,
						bar.Low,
						bar.Close,
						bar.TotalVolume,
					)
				}

				_ = table.Render()
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "1", "bar interval")
	cmd.Flags().StringVar(&unit, "unit", "Daily", "bar unit (Minute, Daily, Weekly, Monthly)")
	cmd.Flags().IntVar(&barsBack, "barsback", 0, "number of bars back from now")
	cmd.Flags().StringVar(&firstDate, "firstdate", "", "start of the bar range (RFC3339)")
	cmd.Flags().StringVar(&lastDate, "lastdate", "", "end of the bar range (RFC3339)")
	cmd.Flags().StringVar(&sessionTemplate, "sessiontemplate", "", "session template (USEQPre, USEQPost, USEQPreAndPost, USEQ24Hour, Default)")

	return cmd
}
