package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/mailtrace/internal/domain"
	"github.com/ignite/mailtrace/internal/pkg/logger"
)

// PostgresStore keeps the event log in a single append-only table. The
// serial primary key preserves append order; INSERT is the only write
// path, so there is no read-modify-write hazard.
type PostgresStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgresStore wraps an open connection pool.
func NewPostgresStore(db *sql.DB, lg *logger.Logger) *PostgresStore {
	if lg == nil {
		lg = logger.Default()
	}
	return &PostgresStore{db: db, log: lg}
}

// EnsureSchema creates the events table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tracking_events (
			id BIGSERIAL PRIMARY KEY,
			tracking_id TEXT NOT NULL,
			event_at TIMESTAMPTZ NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensuring tracking_events schema: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS tracking_events_tracking_id_idx
		ON tracking_events (tracking_id, id)`)
	if err != nil {
		return fmt.Errorf("ensuring tracking_events index: %w", err)
	}
	return nil
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, evt domain.Event) error {
	if evt.TrackingID == "" {
		return fmt.Errorf("eventstore: event missing tracking id")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tracking_events (tracking_id, event_at, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, evt.TrackingID, evt.Timestamp, string(evt.Type), payload)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Query implements Store.
func (s *PostgresStore) Query(ctx context.Context, trackingID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM tracking_events
		WHERE tracking_id = $1
		ORDER BY id
	`, trackingID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events, err := s.scan(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNotFound
	}
	return events, nil
}

// All implements Store.
func (s *PostgresStore) All(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM tracking_events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	defer rows.Close()
	return s.scan(rows)
}

func (s *PostgresStore) scan(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var evt domain.Event
		if err := json.Unmarshal(payload, &evt); err != nil {
			s.log.Warn("skipping unreadable event record", "error", err.Error())
			continue
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
