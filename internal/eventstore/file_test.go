package eventstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailtrace/internal/domain"
)

func openEvent(id string) domain.Event {
	return domain.Event{
		TrackingID: id,
		Timestamp:  time.Now().UTC(),
		Type:       domain.EventOpen,
		Engagement: &domain.EngagementInfo{
			IPAddress: "203.0.113.9",
			Location:  domain.UnknownLocation(),
		},
	}
}

func TestFileStoreAppendAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Append(ctx, openEvent("id-1")))
	require.NoError(t, s.Append(ctx, openEvent("id-1")))
	require.NoError(t, s.Append(ctx, openEvent("id-2")))

	events, err := s.Query(ctx, "id-1")
	require.NoError(t, err)
	assert.Len(t, events, 2)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = s.Query(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreRejectsEmptyTrackingID(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "events.jsonl"), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Append(context.Background(), domain.Event{Type: domain.EventOpen}))
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	ctx := context.Background()

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, openEvent("id-1")))
	require.NoError(t, s.Close()) // flushes the writer

	s2, err := NewFileStore(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	events, err := s2.Query(ctx, "id-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOpen, events[0].Type)
	assert.Equal(t, "203.0.113.9", events[0].Engagement.IPAddress)
}

func TestFileStoreToleratesCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	good := `{"tracking_id":"id-1","timestamp":"2026-01-02T03:04:05Z","type":"open"}`
	content := "this is not json\n" + good + "\n{\"broken\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := NewFileStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	all, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1, "only the parseable line survives")
	assert.Equal(t, "id-1", all[0].TrackingID)
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "sub", "dir", "events.jsonl"), nil)
	require.NoError(t, err)
	defer s.Close()

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFileStoreConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	s, err := NewFileStore(path, nil)
	require.NoError(t, err)

	ctx := context.Background()
	const writers, perWriter = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				id := fmt.Sprintf("id-%d", w%4)
				require.NoError(t, s.Append(ctx, openEvent(id)))
			}
		}(w)
	}
	wg.Wait()

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, writers*perWriter)
	require.NoError(t, s.Close())

	// Every durable line must be whole JSON: interleaved writes would
	// corrupt the log.
	s2, err := NewFileStore(path, nil)
	require.NoError(t, err)
	defer s2.Close()
	all2, err := s2.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all2, writers*perWriter)
}
