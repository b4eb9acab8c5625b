package genai

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxAttempts is the hard ceiling on tries per invocation.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the first retry delay; each further retry
	// doubles it.
	DefaultBackoffBase = time.Second
)

// CredentialPool is the slice of the pool the invoker needs. Satisfied by
// *keypool.Pool.
type CredentialPool interface {
	Current() string
	ReportFailure(err error)
	ReportSuccess()
}

// Operation is one attempt against the generation service using the given
// credential.
type Operation func(ctx context.Context, credential string) (string, error)

// Invoker runs an Operation with classification-aware retry, exponential
// backoff and credential rotation. A failed attempt may rotate the pool's
// cursor, so the next attempt is not guaranteed to use the same credential.
type Invoker struct {
	pool        CredentialPool
	maxAttempts int
	base        time.Duration
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithMaxAttempts overrides the attempt ceiling.
func WithMaxAttempts(n int) InvokerOption {
	return func(inv *Invoker) {
		if n > 0 {
			inv.maxAttempts = n
		}
	}
}

// WithBackoffBase overrides the initial retry delay. Tests shrink it to keep
// retries fast.
func WithBackoffBase(d time.Duration) InvokerOption {
	return func(inv *Invoker) {
		if d > 0 {
			inv.base = d
		}
	}
}

// NewInvoker builds an invoker over the given pool.
func NewInvoker(pool CredentialPool, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		pool:        pool,
		maxAttempts: DefaultMaxAttempts,
		base:        DefaultBackoffBase,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke runs op until it succeeds, fails with a non-retryable error, the
// attempt ceiling is reached, or ctx is cancelled. Success reports back to
// the pool; so does every retryable failure that still has retry budget
// left. The final attempt's failure is returned as-is without touching the
// pool, matching the behavior of an operation that was never going to be
// retried.
//
// No locks are held while sleeping between attempts, and the sleep is
// interruptible by ctx.
func (inv *Invoker) Invoke(ctx context.Context, op Operation) (string, error) {
	var result string
	attempt := 0

	run := func() error {
		credential := inv.pool.Current()
		out, err := op(ctx, credential)
		if err == nil {
			inv.pool.ReportSuccess()
			result = out
			return nil
		}

		cerr := Classify(err)
		attempt++
		if !cerr.Retryable || attempt >= inv.maxAttempts {
			return backoff.Permanent(cerr)
		}

		// Retryable with budget left: demote the credential (possibly
		// rotating the cursor) and let backoff schedule the next attempt.
		inv.pool.ReportFailure(cerr)
		return cerr
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = inv.base
	b.RandomizationFactor = 0 // deterministic base * 2^attempt schedule
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	if err := backoff.Retry(run, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return result, nil
}
