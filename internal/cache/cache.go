package cache

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// CalendarCache fronts the monthly availability calendar. Display only: the
// conflict checker never reads it, it always goes to the store.
type CalendarCache interface {
	GetMonth(ctx context.Context, month string) (map[string][]string, error)
	SetMonth(ctx context.Context, month string, taken map[string][]string) error
	DeleteMonth(ctx context.Context, month string) error
}
