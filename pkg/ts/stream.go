package ts

import (
	"context"
	"encoding/json"
	"time"
)

// StreamEventKind discriminates the stream event union.
type StreamEventKind string

const (
	// StreamEventData carries one decoded record from the stream.
	StreamEventData StreamEventKind = "data"

	// StreamEventHeartbeat is a server liveness signal, roughly every 5s.
	StreamEventHeartbeat StreamEventKind = "heartbeat"

	// StreamEventError is a server-reported stream error. Terminal error
	// events end the stream; no events follow them.
	StreamEventError StreamEventKind = "error"
)

// StreamEvent is one decoded event from a streaming endpoint. Exactly one
// of the payload fields is meaningful, selected by Kind: Data holds the raw
// record verbatim for the caller to interpret, Heartbeat holds the server
// timestamp, and Message/Terminal describe an error event.
type StreamEvent struct {
	Kind      StreamEventKind `json:"kind"                yaml:"kind"`
	Data      json.RawMessage `json:"data,omitempty"      yaml:"data,omitempty"`
	Heartbeat time.Time       `json:"heartbeat,omitempty" yaml:"heartbeat,omitempty"`
	Message   string          `json:"message,omitempty"   yaml:"message,omitempty"`
	Terminal  bool            `json:"terminal,omitempty"  yaml:"terminal,omitempty"`
}

// StreamState is the lifecycle state of a stream session.
type StreamState int32

const (
	// StreamStateInit is the state before connecting.
	StreamStateInit StreamState = iota

	// StreamStateConnecting is the state while the request is in flight.
	StreamStateConnecting

	// StreamStateOpen is the state while events are being delivered.
	StreamStateOpen

	// StreamStateStalled is entered when no line arrived within the
	// configured silence window; the stream resumes on the next line.
	StreamStateStalled

	// StreamStateClosed is the terminal state after an explicit Close.
	StreamStateClosed

	// StreamStateErrored is the terminal state after a terminal error
	// event or a connection fault.
	StreamStateErrored

	// StreamStateEOF is the terminal state after the peer closed cleanly.
	StreamStateEOF
)

// String returns the state name.
func (s StreamState) String() string {
	switch s {
	case StreamStateInit:
		return "init"
	case StreamStateConnecting:
		return "connecting"
	case StreamStateOpen:
		return "open"
	case StreamStateStalled:
		return "stalled"
	case StreamStateClosed:
		return "closed"
	case StreamStateErrored:
		return "errored"
	case StreamStateEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// Terminal reports whether no transition leaves the state.
func (s StreamState) Terminal() bool {
	return s == StreamStateClosed || s == StreamStateErrored || s == StreamStateEOF
}

// Stream is a pull-based, cancellable, non-restartable sequence of stream
// events. Next blocks until an event is available, the context is done, or
// the stream reaches a terminal state. After a terminal state, Next keeps
// returning io.EOF (clean end) or the terminal fault.
//
// A stalled stream surfaces a non-terminal *StreamError from Next and keeps
// delivering events if lines resume; reconnecting is the caller's decision.
type Stream interface {
	Next(ctx context.Context) (*StreamEvent, error)
	Close() error
	State() StreamState
}
