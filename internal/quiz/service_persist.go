package quiz

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Remote datastore writes live here so service.go can focus on the quiz flow.

const (
	defaultPersistAttempts  = 3
	defaultPersistBaseDelay = 200 * time.Millisecond
	defaultPersistTimeout   = 5 * time.Second
)

// PersistPolicy bounds how hard the service tries to reach the remote datastore.
type PersistPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	Timeout   time.Duration
}

func (p PersistPolicy) withDefaults() PersistPolicy {
	if p.Attempts <= 0 {
		p.Attempts = defaultPersistAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultPersistBaseDelay
	}
	if p.Timeout <= 0 {
		p.Timeout = defaultPersistTimeout
	}
	return p
}

// persistAsync runs write in the background with bounded retries. Failures are
// logged and counted but never reach the caller; giveUp, if set, runs after
// the last failed attempt.
func (s *Service) persistAsync(operation string, write func(ctx context.Context) error, giveUp func()) {
	if s.leads == nil {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.persist.Timeout)
		defer cancel()

		backoff := retry.WithMaxRetries(uint64(s.persist.Attempts-1), retry.NewExponential(s.persist.BaseDelay))
		attempt := 0
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			attempt++
			if err := write(ctx); err != nil {
				s.logger.Debug("remote datastore write failed",
					zap.String("operation", operation),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			s.observer.PersistFailed(operation)
			s.logger.Warn("giving up on remote datastore write",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			if giveUp != nil {
				giveUp()
			}
		}
	}()
}

// Close waits for in-flight remote writes or until ctx is done.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
