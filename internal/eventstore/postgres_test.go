package eventstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailtrace/internal/domain"
)

func TestPostgresStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresStore(db, nil)

	evt := openEvent("id-1")
	mock.ExpectExec("INSERT INTO tracking_events").
		WithArgs(evt.TrackingID, evt.Timestamp, string(evt.Type), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Append(context.Background(), evt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresStore(db, nil)

	evt := domain.Event{
		TrackingID: "id-1",
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Type:       domain.EventClick,
		Engagement: &domain.EngagementInfo{TargetURL: "https://example.com", Location: domain.UnknownLocation()},
	}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM tracking_events").
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	events, err := s.Query(context.Background(), "id-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventClick, events[0].Type)
	require.NotNil(t, events[0].Engagement)
	assert.Equal(t, "https://example.com", events[0].Engagement.TargetURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreQueryNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresStore(db, nil)

	mock.ExpectQuery("SELECT payload FROM tracking_events").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err = s.Query(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStoreSkipsUnreadableRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresStore(db, nil)

	good, err := json.Marshal(openEvent("id-1"))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT payload FROM tracking_events ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).
			AddRow([]byte("{broken")).
			AddRow(good))

	events, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPostgresStoreEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewPostgresStore(db, nil)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tracking_events").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS tracking_events_tracking_id_idx").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
