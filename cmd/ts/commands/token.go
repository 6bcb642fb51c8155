package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	var showRefresh bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a valid access token",
		Long: `Obtain a currently valid access token, refreshing it when needed,
and print it to stdout for use with other tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd.Context())
			if err != nil {
				return err
			}

			accessToken, err := client.AccessToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("getting access token: %w", err)
			}

			if showRefresh {
				result := map[string]string{
					"access_token":  accessToken,
					"refresh_token": client.RefreshTokenValue(),
				}

				switch viper.GetString("output") {
				case OutputFormatYAML:
					return outputYAML(result)
				default:
					return outputJSON(result)
				}
			}

			fmt.Println(accessToken)

			return nil
		},
	}

	cmd.Flags().BoolVar(&showRefresh, "show-refresh", false, "also print the current refresh token")

	return cmd
}
