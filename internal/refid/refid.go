// Package refid allocates human-readable booking references of the form
// BOOK-YYYYMMDD-NNNNNN, where NNNNNN is a per-day sequence.
package refid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	prefix    = "BOOK-"
	seqDigits = 6
)

type Allocator interface {
	Allocate(ctx context.Context, creationDate time.Time) (string, error)
}

type Store interface {
	LatestRefID(ctx context.Context, prefix string) (string, error)
}

type Counter interface {
	Next(ctx context.Context, key string, seed int64) (int64, error)
}

// DayPrefix returns "BOOK-YYYYMMDD-" for the UTC calendar date of t.
func DayPrefix(t time.Time) string {
	return prefix + t.UTC().Format("20060102") + "-"
}

func Format(t time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", DayPrefix(t), seqDigits, seq)
}

// Sequence extracts the numeric suffix of refID, which must start with
// dayPrefix.
func Sequence(refID, dayPrefix string) (int64, error) {
	suffix, ok := strings.CutPrefix(refID, dayPrefix)
	if !ok {
		return 0, fmt.Errorf("ref id %q does not start with %q", refID, dayPrefix)
	}
	seq, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("ref id %q has malformed sequence", refID)
	}
	return seq, nil
}

// latestSequence returns the highest sequence already stored for the day of
// dayPrefix, or 0 if there is none.
func latestSequence(ctx context.Context, store Store, dayPrefix string) (int64, error) {
	latest, err := store.LatestRefID(ctx, dayPrefix)
	if err != nil {
		return 0, fmt.Errorf("find latest ref id: %w", err)
	}
	if latest == "" {
		return 0, nil
	}
	return Sequence(latest, dayPrefix)
}

// StoreAllocator reads the day's greatest ref id and increments it. Two
// concurrent allocations for the same day can return the same value; the
// store's unique index then rejects one of the inserts.
type StoreAllocator struct {
	store Store
}

func NewStoreAllocator(store Store) *StoreAllocator {
	return &StoreAllocator{store: store}
}

func (a *StoreAllocator) Allocate(ctx context.Context, creationDate time.Time) (string, error) {
	seq, err := latestSequence(ctx, a.store, DayPrefix(creationDate))
	if err != nil {
		return "", err
	}
	return Format(creationDate, seq+1), nil
}

// CounterAllocator draws the day's sequence from an atomic counter seeded with
// the greatest stored sequence, so concurrent allocations never collide.
type CounterAllocator struct {
	store   Store
	counter Counter
}

func NewCounterAllocator(store Store, counter Counter) *CounterAllocator {
	return &CounterAllocator{store: store, counter: counter}
}

func (a *CounterAllocator) Allocate(ctx context.Context, creationDate time.Time) (string, error) {
	dayPrefix := DayPrefix(creationDate)
	seed, err := latestSequence(ctx, a.store, dayPrefix)
	if err != nil {
		return "", err
	}
	seq, err := a.counter.Next(ctx, dayPrefix, seed)
	if err != nil {
		return "", err
	}
	return Format(creationDate, seq), nil
}

var (
	_ Allocator = (*StoreAllocator)(nil)
	_ Allocator = (*CounterAllocator)(nil)
)
