package engine

import (
	"context"
	"errors"
	"time"
)

// Outcome classifies one bounded generation call.
type Outcome int

const (
	// OutcomeSuccess means the call returned usable content in time.
	OutcomeSuccess Outcome = iota
	// OutcomeEmpty means the call returned within the deadline but produced
	// nothing usable. Unexpected generator errors land here too.
	OutcomeEmpty
	// OutcomeTimedOut means the deadline expired before the call returned.
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTimedOut:
		return "timeout"
	}
	return "unknown"
}

// awaitWithDeadline races call against the deadline. On expiry the wait is
// abandoned: the call's context is cancelled and its eventual result is
// discarded. Callers that still want the answer issue a fresh call on a
// detached continuation instead of continuing this one.
func awaitWithDeadline[T any](ctx context.Context, deadline time.Duration, call func(context.Context) (T, error), isEmpty func(T) bool) (T, Outcome) {
	type result struct {
		value T
		err   error
	}

	cctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ch := make(chan result, 1)
	go func() {
		value, err := call(cctx)
		ch <- result{value: value, err: err}
	}()

	var zero T
	select {
	case res := <-ch:
		if errors.Is(res.err, context.DeadlineExceeded) {
			return zero, OutcomeTimedOut
		}
		if res.err != nil || isEmpty(res.value) {
			return zero, OutcomeEmpty
		}
		return res.value, OutcomeSuccess
	case <-cctx.Done():
		return zero, OutcomeTimedOut
	}
}
