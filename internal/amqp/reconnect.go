package amqp

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const maxBackoff = 30 * time.Second

// exponentialBackoff returns 1s, 2s, 4s... capped at maxBackoff.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// Watch consumes events matching bindingKey, redialing with exponential
// backoff whenever the broker connection drops. It returns when ctx is done
// or a non-connection error occurs.
func Watch(ctx context.Context, url, exchangeName, bindingKey string, handler func(*ExpenseEvent) error) error {
	attempt := 0
	for {
		client, err := NewClient(url, exchangeName)
		if err == nil {
			attempt = 0
			err = client.Consume(ctx, bindingKey, handler)
			client.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !IsConnectionError(err) && !errors.Is(err, errChannelClosed) {
			return err
		}

		wait := exponentialBackoff(attempt)
		attempt++
		slog.WarnContext(ctx, "AMQP connection lost, retrying", "error", err, "backoff", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
