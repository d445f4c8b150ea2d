// Package notifier delivers alert reports and answers chat commands.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Sink is anything that can deliver a report text.
type Sink interface {
	Send(ctx context.Context, text string) error
	Name() string
}

// retryBaseDelay is the first backoff interval; it doubles on every attempt.
var retryBaseDelay = time.Second

func sendWithRetry(ctx context.Context, s Sink, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		err := s.Send(ctx, text)
		if err == nil {
			return nil
		}
		lastErr = err
		if i == maxRetries {
			break
		}
		backoff := retryBaseDelay * time.Duration(1<<uint(i))
		log.Warn().Err(err).Str("sink", s.Name()).
			Int("attempt", i+1).Int("max", maxRetries+1).Dur("backoff", backoff).
			Msg("send failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", s.Name(), maxRetries+1, lastErr)
}

// Retrying wraps a sink with exponential backoff.
type Retrying struct {
	Sink       Sink
	MaxRetries int
}

func (r *Retrying) Name() string { return r.Sink.Name() }

func (r *Retrying) Send(ctx context.Context, text string) error {
	return sendWithRetry(ctx, r.Sink, text, r.MaxRetries)
}

// Multi fans a message out to every sink. One failing sink does not stop the
// others; all failures are returned together.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Send(ctx context.Context, text string) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogSink writes reports to the structured log. Used when no chat sink is
// configured and in dry runs.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, text string) error {
	log.Info().Str("sink", "log").Msg(text)
	return nil
}
