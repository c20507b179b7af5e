package store

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/config"
	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(id string) *core.Result {
	return &core.Result{
		ID:        id,
		FileName:  "export.csv",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:  42 * time.Millisecond,
		Stats: core.Stats{
			InitialRows:  3,
			FilteredRows: 1,
			FinalRows:    2,
			ExchangeRate: 1.1,
			RateSamples:  1,
		},
		InputHeader:  []string{"Organization Name"},
		InputPreview: [][]string{{"Acme"}},
		Rows: []core.OutputRow{{
			CompanyName:      core.Text("Acme"),
			Website2:         core.Text(""),
			Website:          core.Text("acme.io"),
			AnnouncementDate: core.Text(""),
			Amount:           core.Text("€M 1"),
		}},
	}
}

func TestMemory_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Hour)

	res := sampleResult("a")
	require.NoError(t, m.Put(ctx, res))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, res, got)

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, core.ErrResultNotFound)

	assert.NoError(t, m.Delete(ctx, "missing"))
	assert.NoError(t, m.Close())
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory(time.Minute)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, sampleResult("old")))
	now = now.Add(30 * time.Second)
	require.NoError(t, m.Put(ctx, sampleResult("new")))

	now = now.Add(45 * time.Second)
	_, err := m.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrResultNotFound)
	_, err = m.Get(ctx, "new")
	assert.NoError(t, err)

	purged, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 1, m.Len())
}

type countingPurger struct {
	calls chan struct{}
}

func (c *countingPurger) PurgeExpired(context.Context) (int64, error) {
	c.calls <- struct{}{}
	return 1, nil
}

// purgingStore adds a Purger to a Memory store.
type purgingStore struct {
	*Memory
	*countingPurger
}

func (p purgingStore) PurgeExpired(ctx context.Context) (int64, error) {
	return p.countingPurger.PurgeExpired(ctx)
}

func TestStartSweeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := purgingStore{Memory: NewMemory(time.Minute), countingPurger: &countingPurger{calls: make(chan struct{}, 10)}}

	done := make(chan struct{})
	go func() {
		StartSweeper(ctx, p, 10*time.Millisecond)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-p.calls:
		case <-time.After(time.Second):
			t.Fatal("sweeper did not run")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}

func TestStartSweeper_NotPurger(t *testing.T) {
	done := make(chan struct{})
	go func() {
		StartSweeper(context.Background(), NewRedisFromClient(nil, time.Minute), time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StartSweeper should return immediately for stores without expiry work")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Backend: config.BackendMemory, TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
}
