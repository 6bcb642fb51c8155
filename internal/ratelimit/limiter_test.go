package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForSlot(t *testing.T) {
	t.Parallel()

	t.Run("unknown endpoint admits immediately", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()

		start := time.Now()
		err := limiter.WaitForSlot(context.Background(), "/v3/marketdata/quotes")
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("remaining quota admits immediately", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()
		limiter.UpdateLimits("/v3/marketdata/quotes", 120, congestedButPositive, time.Now().Add(time.Minute))

		err := limiter.WaitForSlot(context.Background(), "/v3/marketdata/quotes")
		require.NoError(t, err)
	})

	t.Run("exhausted quota blocks until reset", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()
		reset := time.Now().Add(150 * time.Millisecond)
		limiter.UpdateLimits("/v3/marketdata/quotes", 120, 0, reset)

		start := time.Now()
		err := limiter.WaitForSlot(context.Background(), "/v3/marketdata/quotes")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("endpoints are independent", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()
		limiter.UpdateLimits("/v3/marketdata/quotes", 120, 0, time.Now().Add(time.Minute))

		// The exhausted quotes window must not delay barcharts.
		start := time.Now()
		err := limiter.WaitForSlot(context.Background(), "/v3/marketdata/barcharts/MSFT")
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("context cancellation abandons the wait", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()
		limiter.UpdateLimits("/v3/marketdata/quotes", 120, 0, time.Now().Add(time.Minute))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		err := limiter.WaitForSlot(ctx, "/v3/marketdata/quotes")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("fresh headers release the queue", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()
		limiter.UpdateLimits("/v3/marketdata/quotes", 120, 0, time.Now().Add(time.Minute))

		released := make(chan struct{})

		go func() {
			defer close(released)

			_ = limiter.WaitForSlot(context.Background(), "/v3/marketdata/quotes")
		}()

		// Simulate another response arriving with quota available again.
		time.Sleep(20 * time.Millisecond)
		limiter.UpdateLimits("/v3/marketdata/quotes", 120, 5, time.Now().Add(time.Minute))

		select {
		case <-released:
		case <-time.After(time.Second):
			t.Fatal("waiter was not released after quota became available")
		}
	})
}

// congestedButPositive documents that any remaining > 0 admits.
const congestedButPositive = 1

func TestWaitForSlotFIFO(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter()
	limiter.UpdateLimits("/v3/marketdata/quotes", 120, 0, time.Now().Add(80*time.Millisecond))

	const waiters = 5

	var (
		mu    sync.Mutex
		order []int
	)

	var waitGroup sync.WaitGroup

	for i := 0; i < waiters; i++ {
		waitGroup.Add(1)

		// Stagger enqueue so arrival order is deterministic.
		go func(id int) {
			defer waitGroup.Done()

			err := limiter.WaitForSlot(context.Background(), "/v3/marketdata/quotes")
			assert.NoError(t, err)

			mu.Lock()
			order = append(order, id)
			mu.Unlock()
		}(i)

		time.Sleep(10 * time.Millisecond)
	}

	waitGroup.Wait()

	require.Len(t, order, waiters)

	for i, id := range order {
		assert.Equal(t, i, id, "waiters must be released in enqueue order")
	}
}

func TestUpdateFromHeaders(t *testing.T) {
	t.Parallel()

	t.Run("parses the full header set", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()
		reset := time.Now().Add(time.Minute).Unix()

		headers := http.Header{}
		headers.Set(HeaderLimit, "120")
		headers.Set(HeaderRemaining, "37")
		headers.Set(HeaderReset, strconv.FormatInt(reset, 10))

		limiter.UpdateFromHeaders("/v3/marketdata/quotes", headers)

		limit, remaining, gotReset, known := limiter.Snapshot("/v3/marketdata/quotes")
		assert.True(t, known)
		assert.Equal(t, 120, limit)
		assert.Equal(t, 37, remaining)
		assert.Equal(t, reset, gotReset.Unix())
	})

	t.Run("missing headers leave state unchanged", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()

		headers := http.Header{}
		headers.Set(HeaderLimit, "120")
		// Remaining and Reset absent.

		limiter.UpdateFromHeaders("/v3/marketdata/quotes", headers)

		_, _, _, known := limiter.Snapshot("/v3/marketdata/quotes")
		assert.False(t, known)
	})

	t.Run("malformed headers leave state unchanged", func(t *testing.T) {
		t.Parallel()

		limiter := NewLimiter()

		headers := http.Header{}
		headers.Set(HeaderLimit, "not-a-number")
		headers.Set(HeaderRemaining, "10")
		headers.Set(HeaderReset, "1700000000")

		limiter.UpdateFromHeaders("/v3/marketdata/quotes", headers)

		_, _, _, known := limiter.Snapshot("/v3/marketdata/quotes")
		assert.False(t, known)
	})
}

// Models the scenario where ten callers hit an endpoint whose window allows
// two requests: the first two pass immediately, the rest drain in order as
// windows reset.
func TestBurstAgainstSmallWindow(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter()
	endpoint := "/v3/brokerage/accounts"

	// First response observed: window of 2, both already spent.
	limiter.UpdateLimits(endpoint, 2, 0, time.Now().Add(60*time.Millisecond))

	var completed sync.WaitGroup

	start := time.Now()

	for i := 0; i < 4; i++ {
		completed.Add(1)

		go func() {
			defer completed.Done()

			err := limiter.WaitForSlot(context.Background(), endpoint)
			assert.NoError(t, err)
		}()
	}

	completed.Wait()

	// All four must eventually be admitted, none before the first reset.
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
