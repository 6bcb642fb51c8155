package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/tradestation-client/internal/stream"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// NewStreamCommand creates the stream command group
func NewStreamCommand() *cobra.Command {
	var natsURL string

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream live data",
		Long: `Stream quotes, bars, orders, or positions as newline-delimited JSON.

With --nats-url, data events are additionally republished to a NATS
subject named after the stream (e.g. ts.stream.quotes).`,
	}

	cmd.PersistentFlags().StringVar(&natsURL, "nats-url", "", "republish data events to this NATS server")

	cmd.AddCommand(newStreamQuotesCommand(&natsURL))
	cmd.AddCommand(newStreamBarsCommand(&natsURL))
	cmd.AddCommand(newStreamOrdersCommand(&natsURL))
	cmd.AddCommand(newStreamPositionsCommand(&natsURL))

	return cmd
}

func newStreamQuotesCommand(natsURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "quotes SYMBOL...",
		Short: "Stream quote changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd.Context(), *natsURL, "ts.stream.quotes", func(ctx context.Context, client ts.Client) (ts.Stream, error) {
				return client.MarketData().StreamQuotes(ctx, args)
			})
		},
	}
}

func newStreamBarsCommand(natsURL *string) *cobra.Command {
	var unit, interval string

	cmd := &cobra.Command{
		Use:   "bars SYMBOL",
		Short: "Stream bar updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := &ts.BarsParams{Interval: interval, Unit: unit}

			return runStream(cmd.Context(), *natsURL, "ts.stream.bars", func(ctx context.Context, client ts.Client) (ts.Stream, error) {
				return client.MarketData().StreamBars(ctx, args[0], params)
			})
		},
	}

	cmd.Flags().StringVar(&interval, "interval", "1", "bar interval")
	cmd.Flags().StringVar(&unit, "unit", "Minute", "bar unit")

	return cmd
}

func newStreamOrdersCommand(natsURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "orders ACCOUNT_ID...",
		Short: "Stream order status changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd.Context(), *natsURL, "ts.stream.orders", func(ctx context.Context, client ts.Client) (ts.Stream, error) {
				return client.Brokerage().StreamOrders(ctx, args)
			})
		},
	}
}

func newStreamPositionsCommand(natsURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "positions ACCOUNT_ID...",
		Short: "Stream position changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd.Context(), *natsURL, "ts.stream.positions", func(ctx context.Context, client ts.Client) (ts.Stream, error) {
				return client.Brokerage().StreamPositions(ctx, args)
			})
		},
	}
}

type streamOpener func(ctx context.Context, client ts.Client) (ts.Stream, error)

// runStream opens the stream and pumps events to stdout until the stream
// ends or the process is interrupted.
func runStream(parent context.Context, natsURL, subject string, open streamOpener) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := createClient(ctx)
	if err != nil {
		return err
	}

	s, err := open(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	defer func() { _ = s.Close() }()

	if natsURL != "" {
		relay, err := stream.NewRelay(natsURL)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}

		defer relay.Close()

		go func() {
			relayErr := relay.Run(ctx, s, subject)
			if relayErr != nil {
				fmt.Fprintf(os.Stderr, "relay stopped: %v\n", relayErr)
			}
		}()

		<-ctx.Done()

		return nil
	}

	for {
		event, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}

			streamErr := &ts.StreamError{}
			if errors.As(err, &streamErr) && !streamErr.Terminal {
				fmt.Fprintf(os.Stderr, "warning: %s\n", streamErr.Message)

				continue
			}

			return fmt.Errorf("stream failed: %w", err)
		}

		switch event.Kind {
		case ts.StreamEventData:
			fmt.Println(string(event.Data))
		case ts.StreamEventHeartbeat:
			fmt.Fprintf(os.Stderr, "heartbeat %s\n", event.Heartbeat.Format("15:04:05"))
		case ts.StreamEventError:
			fmt.Fprintf(os.Stderr, "stream error: %s\n", event.Message)

			if event.Terminal {
				return nil
			}
		}
	}
}
