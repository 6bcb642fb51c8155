// Package stream turns a persistent, newline-delimited response body into
// a pull-based sequence of typed stream events.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/tradestation-client/internal/constants"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// Connector establishes the streaming connection. The transport layer
// supplies one as a closure over its token/admission/open sequence.
type Connector func(ctx context.Context) (*http.Response, error)

// Option configures a Reader.
type Option func(*Reader)

// WithMaxSilence sets the maximum inter-event silence before Next surfaces
// a non-fatal stall error. Zero disables stall detection.
func WithMaxSilence(d time.Duration) Option {
	return func(r *Reader) {
		r.maxSilence = d
	}
}

// WithOnClose registers a callback invoked once when the reader reaches a
// terminal state.
func WithOnClose(fn func()) Option {
	return func(r *Reader) {
		r.onClose = fn
	}
}

// lineResult is one scanned line or the read loop's final error.
type lineResult struct {
	line []byte
	err  error
}

// Reader implements ts.Stream over an open response body. Events are
// delivered strictly in wire order; the sequence is not restartable, and
// the reader never reconnects on its own.
type Reader struct {
	state      atomic.Int32
	resp       *http.Response
	lines      chan lineResult
	closed     chan struct{}
	closeOnce  sync.Once
	maxSilence time.Duration
	onClose    func()

	// termErr is the fault returned by Next after a terminal state.
	termErr error
}

// Open connects and returns a running reader. The state machine moves
// INIT -> CONNECTING -> OPEN here; connection failures land in ERRORED.
func Open(ctx context.Context, connect Connector, opts ...Option) (*Reader, error) {
	r := &Reader{
		lines:  make(chan lineResult),
		closed: make(chan struct{}),
	}
	r.state.Store(int32(ts.StreamStateInit))

	for _, opt := range opts {
		opt(r)
	}

	r.state.Store(int32(ts.StreamStateConnecting))

	resp, err := connect(ctx)
	if err != nil {
		r.state.Store(int32(ts.StreamStateErrored))
		r.finish()

		return nil, err
	}

	r.resp = resp
	r.state.Store(int32(ts.StreamStateOpen))

	go r.readLoop()

	return r, nil
}

// State returns the current lifecycle state.
func (r *Reader) State() ts.StreamState {
	return ts.StreamState(r.state.Load())
}

// Close closes the underlying connection and stops delivery. Pending Next
// calls resolve with termination rather than hang. Close is idempotent and
// does not disturb an already-terminal state.
func (r *Reader) Close() error {
	r.transition(ts.StreamStateClosed)
	r.finish()

	return nil
}

// Next returns the next event. It blocks until an event arrives, the
// configured silence window lapses (non-fatal stall), the context is done,
// or the stream terminates.
func (r *Reader) Next(ctx context.Context) (*ts.StreamEvent, error) {
	for {
		state := r.State()
		if state.Terminal() {
			return nil, r.terminalError(state)
		}

		var (
			timer *time.Timer
			stall <-chan time.Time
		)

		if r.maxSilence > 0 {
			timer = time.NewTimer(r.maxSilence)
			stall = timer.C
		}

		select {
		case result := <-r.lines:
			if timer != nil {
				timer.Stop()
			}

			if result.err != nil {
				return nil, r.finishWith(result.err)
			}

			event := decodeLine(result.line)
			if event == nil {
				// Blank line or transport keep-alive artifact.
				continue
			}

			if event.Kind == ts.StreamEventError && event.Terminal {
				r.termErr = &ts.StreamError{Message: event.Message, Terminal: true}
				r.transition(ts.StreamStateErrored)
				r.finish()

				return event, nil
			}

			// A line after a stall resumes the stream.
			r.state.CompareAndSwap(int32(ts.StreamStateStalled), int32(ts.StreamStateOpen))

			return event, nil

		case <-stall:
			r.state.CompareAndSwap(int32(ts.StreamStateOpen), int32(ts.StreamStateStalled))

			return nil, &ts.StreamError{Message: "stream stalled: no events within silence window", Terminal: false}

		case <-r.closed:
			if timer != nil {
				timer.Stop()
			}

			return nil, r.terminalError(r.State())

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil, fmt.Errorf("waiting for stream event: %w", ctx.Err())
		}
	}
}

// readLoop scans lines off the connection until it ends or the reader is
// closed.
func (r *Reader) readLoop() {
	scanner := bufio.NewScanner(r.resp.Body)
	scanner.Buffer(make([]byte, 64*1024), constants.StreamScanBufferSize)

	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)

		select {
		case r.lines <- lineResult{line: line}:
		case <-r.closed:
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}

	select {
	case r.lines <- lineResult{err: err}:
	case <-r.closed:
	}
}

// finishWith resolves the read loop's final error into a terminal state.
func (r *Reader) finishWith(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		// Peer closed cleanly.
		r.transition(ts.StreamStateEOF)
		r.termErr = io.EOF
	default:
		if r.State() == ts.StreamStateClosed {
			r.termErr = constants.ErrStreamClosed
		} else {
			r.termErr = &ts.StreamError{Message: fmt.Sprintf("connection fault: %v", err), Terminal: true}
			r.transition(ts.StreamStateErrored)
		}
	}

	r.finish()

	return r.termErr
}

// terminalError reports the fault matching a terminal state.
func (r *Reader) terminalError(state ts.StreamState) error {
	if r.termErr != nil {
		return r.termErr
	}

	switch state {
	case ts.StreamStateEOF:
		return io.EOF
	case ts.StreamStateClosed:
		return constants.ErrStreamClosed
	default:
		return &ts.StreamError{Message: "stream terminated", Terminal: true}
	}
}

// transition moves to a terminal state unless one is already set.
func (r *Reader) transition(state ts.StreamState) {
	for {
		current := r.State()
		if current.Terminal() {
			return
		}

		if r.state.CompareAndSwap(int32(current), int32(state)) {
			return
		}
	}
}

// finish releases the connection and signals the read loop, exactly once.
func (r *Reader) finish() {
	r.closeOnce.Do(func() {
		close(r.closed)

		if r.resp != nil {
			_ = r.resp.Body.Close()
		}

		if r.onClose != nil {
			r.onClose()
		}
	})
}

// decodeLine classifies one input line. The wire format is loosely
// specified, so classification is an explicit decode-attempt order: the
// error shape, then the heartbeat shape, else a data record. Lines that do
// not parse as JSON objects produce no event and do not end the stream.
func decodeLine(line []byte) *ts.StreamEvent {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return nil
	}

	if !json.Valid(trimmed) {
		return nil
	}

	var errShape struct {
		Error   string `json:"Error"`
		Message string `json:"Message"`
	}

	if json.Unmarshal(trimmed, &errShape) == nil && errShape.Error != "" {
		message := errShape.Error
		if errShape.Message != "" {
			message += ": " + errShape.Message
		}

		return &ts.StreamEvent{
			Kind:     ts.StreamEventError,
			Message:  message,
			Terminal: true,
		}
	}

	var hbShape struct {
		Heartbeat *json.Number `json:"Heartbeat"`
		Timestamp string       `json:"Timestamp"`
	}

	if json.Unmarshal(trimmed, &hbShape) == nil && hbShape.Heartbeat != nil {
		at := time.Now()

		if hbShape.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, hbShape.Timestamp); err == nil {
				at = parsed
			}
		}

		return &ts.StreamEvent{
			Kind:      ts.StreamEventHeartbeat,
			Heartbeat: at,
		}
	}

	return &ts.StreamEvent{
		Kind: ts.StreamEventData,
		Data: json.RawMessage(append([]byte(nil), trimmed...)),
	}
}
