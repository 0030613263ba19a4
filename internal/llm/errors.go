package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Every provider failure is folded into one of these. Agents match them with
// errors.Is and switch to their canned output.
var (
	ErrUnavailable    = errors.New("llm provider unavailable")
	ErrTimeout        = errors.New("llm request timed out")
	ErrInvalidOutput  = errors.New("invalid llm output format")
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrTimeout, "TIMEOUT"},
	{ErrUnavailable, "UNAVAILABLE"},
	{ErrInvalidOutput, "INVALID_OUTPUT"},
	{ErrRetryExhausted, "RETRY_EXHAUSTED"},
}

// ErrorCode is the short label carried on failed call events.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "UNKNOWN"
}

// retryable is false once the deadline has passed or the provider refused
// us outright; neither recovers within one Generate call.
func retryable(ctx context.Context, err error) bool {
	return ctx.Err() == nil && !errors.Is(err, ErrUnavailable)
}

// classify turns the last attempt's failure into the error Generate returns.
func classify(ctx context.Context, last error) error {
	var opErr *net.OpError
	switch {
	case ctx.Err() != nil:
		return ErrTimeout
	case errors.Is(last, ErrUnavailable), errors.As(last, &opErr):
		return ErrUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, last)
	}
}
