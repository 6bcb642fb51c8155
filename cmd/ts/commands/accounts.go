package commands

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewAccountsCommand creates the accounts command
func NewAccountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "List brokerage accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := client.Brokerage().GetAccounts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(resp)
			case OutputFormatYAML:
				return outputYAML(resp)
			default:
				if len(resp.Accounts) == 0 {
					fmt.Println("No accounts found")

					return nil
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Account ID", "Type", "Alias", "Currency", "Status")

				for _, account := range resp.Accounts {
					_ = table.Append(
						account.AccountID,
						account.AccountType,
						orDefault(account.Alias),
						orDefault(account.Currency),
						orDefault(account.Status),
					)
				}

				_ = table.Render()
			}

			return nil
		},
	}
}
