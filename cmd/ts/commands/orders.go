package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// NewOrdersCommand creates the orders command group
func NewOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "Manage orders",
		Long:    "List, cancel, and inspect orders",
	}

	cmd.AddCommand(newOrdersListCommand())
	cmd.AddCommand(newOrdersHistoricalCommand())
	cmd.AddCommand(newOrdersCancelCommand())
	cmd.AddCommand(newOrdersRoutesCommand())

	return cmd
}

func newOrdersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list ACCOUNT_ID...",
		Short: "List open orders for accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Brokerage().GetOrders(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("failed to list orders: %w", err)
			}

			return renderOrders(resp)
		},
	}
}

func newOrdersHistoricalCommand() *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "historical ACCOUNT_ID...",
		Short: "List historical orders for accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Brokerage().GetHistoricalOrders(cmd.Context(), args, since)
			if err != nil {
				return fmt.Errorf("failed to list historical orders: %w", err)
			}

			return renderOrders(resp)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "earliest order date (YYYY-MM-DD)")

	return cmd
}

func newOrdersCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.OrderExecution().CancelOrder(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel order: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if resp.Error != "" {
					return fmt.Errorf("cancel rejected: %s: %s", resp.Error, resp.Message) //nolint:err113 // server-provided detail
				}

				fmt.Printf("Order %s canceled\n", resp.OrderID)
			}

			return nil
		},
	}
}

func newOrdersRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List execution routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.OrderExecution().GetRoutes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list routes: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("ID", "Name", "Asset Types")

				for _, route := range resp.Routes {
					_ = table.Append(route.ID, route.Name, strings.Join(route.AssetTypes, ", "))
				}

				_ = table.Render()
			}

			return nil
		},
	}
}

func renderOrders(resp *ts.OrdersResponse) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return outputJSON(resp)
	case OutputFormatYAML:
		return outputYAML(resp)
	default:
		if len(resp.Orders) == 0 {
			fmt.Println("No orders found")

			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Order ID", "Account", "Status", "Type", "Symbol", "Limit", "Opened")

		for _, order := range resp.Orders {
			symbol := NotAvailable
			if len(order.Legs) > 0 {
				symbol = order.Legs[0].Symbol
			}

			_ = table.Append(
				order.OrderID,
				order.AccountID,
				orDefault(order.Status),
				orDefault(order.OrderType),
				symbol,
				orDefault(order.LimitPrice),
				orDefault(order.OpenedDateTime),
			)
		}

		_ = table.Render()
	}

	return nil
}
