package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fivetwenty-io/tradestation-client/internal/constants"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
	"github.com/nats-io/nats.go"
)

// Relay republishes stream data events onto NATS subjects so downstream
// consumers can fan out one market data stream without each holding an API
// connection.
type Relay struct {
	conn *nats.Conn
}

// NewRelay connects to the NATS server.
func NewRelay(url string, opts ...nats.Option) (*Relay, error) {
	opts = append([]nats.Option{
		nats.Name("tradestation-client-relay"),
		nats.Timeout(constants.ShortHTTPTimeout),
	}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &Relay{conn: conn}, nil
}

// Run pumps events from the stream to the subject until the stream
// terminates or the context is done. Data events are published verbatim;
// heartbeats are dropped (they only signal liveness of the upstream
// connection); stalls propagate as errors for the caller to act on. A
// clean EOF returns nil.
func (r *Relay) Run(ctx context.Context, s ts.Stream, subject string) error {
	for {
		event, err := s.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading stream for relay: %w", err)
		}

		if event.Kind != ts.StreamEventData {
			continue
		}

		err = r.conn.Publish(subject, event.Data)
		if err != nil {
			return fmt.Errorf("publishing to %s: %w", subject, err)
		}
	}
}

// Close flushes and releases the NATS connection.
func (r *Relay) Close() {
	_ = r.conn.Flush()
	r.conn.Close()
}
