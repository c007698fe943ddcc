package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrying retries transient failures of the wrapped Generator with
// exponential backoff. A stream is only retried while it has not yet
// produced a fragment, so callers never see duplicated text.
type Retrying struct {
	inner  Generator
	config RetryConfig
	log    logrus.FieldLogger
}

func NewRetrying(inner Generator, config RetryConfig, log logrus.FieldLogger) *Retrying {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 10 * time.Second
	}
	return &Retrying{inner: inner, config: config, log: log}
}

func (r *Retrying) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var text string
	err := r.retry(ctx, func() error {
		var err error
		text, err = r.inner.Generate(ctx, prompt)
		return retryable(err)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (r *Retrying) Stream(ctx context.Context, prompt Prompt) (<-chan Chunk, error) {
	out := make(chan Chunk)

	go func() {
		defer close(out)

		var (
			chunks  <-chan Chunk
			first   Chunk
			started bool
		)
		err := r.retry(ctx, func() error {
			c, err := r.inner.Stream(ctx, prompt)
			if err != nil {
				return retryable(err)
			}
			first, started, err = firstFragment(c)
			if err != nil {
				return retryable(err)
			}
			chunks = c
			return nil
		})
		if err != nil {
			sendChunk(ctx, out, Chunk{Err: err})
			return
		}
		if !started {
			return
		}
		if !sendChunk(ctx, out, first) {
			drain(chunks)
			return
		}

		// past the first fragment a failure ends the stream
		var streamErr error
		for c := range chunks {
			if c.Err != nil {
				streamErr = c.Err
				continue
			}
			if !sendChunk(ctx, out, c) {
				drain(chunks)
				return
			}
		}
		if streamErr != nil {
			sendChunk(ctx, out, Chunk{Err: streamErr})
		}
	}()

	return out, nil
}

// retry runs op under the configured backoff policy, logging every failed
// attempt that will be tried again.
func (r *Retrying) retry(ctx context.Context, op backoff.Operation) error {
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return op()
	}, r.policy(ctx), func(err error, delay time.Duration) {
		r.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
			"error":   err,
		}).Warn("generation failed, retrying")
	})
}

func (r *Retrying) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(r.config.BaseDelay),
		backoff.WithMaxInterval(r.config.MaxDelay),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.config.MaxAttempts-1)), ctx)
}

// retryable marks errors that another attempt cannot fix as permanent.
func retryable(err error) error {
	if err == nil || Retryable(err) {
		return err
	}
	return backoff.Permanent(err)
}

// firstFragment waits for the first text chunk of a stream. A stream that
// fails before producing one is drained and its error returned.
func firstFragment(chunks <-chan Chunk) (Chunk, bool, error) {
	c, ok := <-chunks
	if !ok {
		return Chunk{}, false, nil
	}
	if c.Err != nil {
		drain(chunks)
		return Chunk{}, false, c.Err
	}
	return c, true, nil
}

func drain(chunks <-chan Chunk) {
	go func() {
		for range chunks {
		}
	}()
}
