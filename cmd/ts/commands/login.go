package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
	"github.com/fivetwenty-io/tradestation-client/pkg/tsclient"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
		refreshToken string
		environment  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store API credentials",
		Long: `Validate a client ID and refresh token against the sign-in endpoint
and persist them to the CLI config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				clientID = viper.GetString("client_id")
			}

			if clientID == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Client ID: ")

				line, _ := reader.ReadString('\n')
				clientID = strings.TrimSpace(line)
			}

			if refreshToken == "" {
				fmt.Print("Refresh token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read refresh token: %w", err)
				}

				refreshToken = strings.TrimSpace(string(byteToken))

				fmt.Println()
			}

			if environment == "" {
				environment = viper.GetString("environment")
			}

			env := ts.ParseEnvironment(environment)

			client, err := tsclient.New(cmd.Context(), &ts.Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				RefreshToken: refreshToken,
				Environment:  env,
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			// Exercise the refresh flow once so bad credentials fail here
			// rather than on the first data command.
			_, err = client.AccessToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("validating credentials: %w", err)
			}

			// The refresh token may have been rotated during validation;
			// persist the current value, not the input.
			err = persistConfig(clientID, clientSecret, client.RefreshTokenValue(), string(env))
			if err != nil {
				return err
			}

			fmt.Printf("Logged in to the %s environment\n", env)

			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (confidential clients only)")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "OAuth2 refresh token")
	cmd.Flags().StringVarP(&environment, "environment", "e", "", "API environment (live, simulation)")

	return cmd
}
