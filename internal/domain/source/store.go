package source

import "context"

// Store persists source records keyed by URL.
type Store interface {
	// Upsert inserts or replaces a record and reports whether it existed.
	Upsert(ctx context.Context, rec Record) (existed bool, err error)
	Get(ctx context.Context, url string) (*Record, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
	Delete(ctx context.Context, url string) (int, error)
	DeleteMany(ctx context.Context, urls []string) (int, error)
	Close() error
}
