package constants

import "errors"

// Credential and token errors.
var (
	ErrNoRefreshToken      = errors.New("no refresh token available, please run 'ts login' again")
	ErrNoClientID          = errors.New("no client ID configured")
	ErrFailedRetrieveToken = errors.New("failed to retrieve refreshed token")
)

// Streaming errors.
var (
	ErrMaxStreamsReached = errors.New("maximum number of concurrent streams reached")
	ErrStreamClosed      = errors.New("stream is closed")
)
