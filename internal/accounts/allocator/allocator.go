// Package allocator generates collision-free 8-digit account numbers.
//
// Generation alone cannot guarantee uniqueness under concurrency: two calls
// can both pass the in-use check before either account row lands. The store's
// unique constraint on account_number is the real guarantee; the registry
// treats a create conflict as a retry signal. This package only keeps the
// expected number of such conflicts near zero.
package allocator

import (
	"context"
	"fmt"
	"math/rand"

	dErrors "finbank/pkg/domain-errors"
)

const (
	// numberSpace is 10^8: account numbers are uniformly sampled 8-digit,
	// zero-padded strings.
	numberSpace = 100_000_000

	defaultMaxAttempts = 10
)

// NumberChecker reports whether an account number is already in use,
// soft-deleted accounts included; numbers are never reused.
type NumberChecker interface {
	NumberInUse(ctx context.Context, number string) (bool, error)
}

// Allocator generates fresh account numbers with a bounded retry budget.
type Allocator struct {
	checker     NumberChecker
	maxAttempts int
	randInt     func() int64
}

type Option func(*Allocator)

// WithMaxAttempts overrides the generation retry budget.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithRandSource injects a deterministic number source for tests.
func WithRandSource(fn func() int64) Option {
	return func(a *Allocator) { a.randInt = fn }
}

func New(checker NumberChecker, opts ...Option) *Allocator {
	a := &Allocator{
		checker:     checker,
		maxAttempts: defaultMaxAttempts,
		randInt:     func() int64 { return rand.Int63n(numberSpace) },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate returns an account number not currently in use, or an
// allocation_exhausted error once the attempt budget is spent.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		number := fmt.Sprintf("%08d", a.randInt())

		inUse, err := a.checker.NumberInUse(ctx, number)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check account number availability")
		}
		if !inUse {
			return number, nil
		}
	}
	return "", dErrors.New(dErrors.CodeAllocationExhausted, "could not allocate a free account number")
}
