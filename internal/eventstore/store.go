// Package eventstore persists the append-only tracking event log and
// answers per-tracking-ID queries. Three backends implement the same
// Store contract: a JSONL file with a single-writer append discipline, a
// Redis list per tracking ID, and a Postgres table.
package eventstore

import (
	"context"
	"errors"

	"github.com/ignite/mailtrace/internal/domain"
)

// ErrNotFound is returned by Query when a tracking ID has no events.
var ErrNotFound = errors.New("eventstore: tracking id not found")

// Store is the injected event-log abstraction. Events are immutable once
// appended; Query returns them in append order for one tracking ID, All
// returns the whole log in append order.
type Store interface {
	Append(ctx context.Context, evt domain.Event) error
	Query(ctx context.Context, trackingID string) ([]domain.Event, error)
	All(ctx context.Context) ([]domain.Event, error)
	Close() error
}
