package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord struct {
	payload   []byte
	expiresAt time.Time
}

// fakeDB emulates the clean_results statements issued by Postgres.
type fakeDB struct {
	mu      sync.Mutex
	records map[string]fakeRecord
	execs   []string
	execErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{records: make(map[string]fakeRecord)}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}

	switch sql {
	case upsertResult:
		f.records[args[0].(string)] = fakeRecord{payload: args[1].([]byte), expiresAt: args[3].(time.Time)}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case deleteResult:
		id := args[0].(string)
		if _, ok := f.records[id]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(f.records, id)
		return pgconn.NewCommandTag("DELETE 1"), nil
	case purgeResults:
		cutoff := args[0].(time.Time)
		n := 0
		for id, r := range f.records {
			if !r.expiresAt.After(cutoff) {
				delete(f.records, id)
				n++
			}
		}
		return pgconn.NewCommandTag(fmt.Sprintf("DELETE %d", n)), nil
	default:
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	}
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sql != selectResult {
		return fakeRow{err: fmt.Errorf("unexpected query %q", sql)}
	}
	r, ok := f.records[args[0].(string)]
	if !ok || !r.expiresAt.After(args[1].(time.Time)) {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{payload: r.payload}
}

type fakeRow struct {
	payload []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*[]byte) = r.payload
	return nil
}

func TestPostgres_Migrate(t *testing.T) {
	db := newFakeDB()
	p := NewPostgres(db, time.Hour)

	require.NoError(t, p.Migrate(context.Background()))
	require.Len(t, db.execs, 2)
	assert.True(t, strings.HasPrefix(db.execs[0], "CREATE TABLE IF NOT EXISTS clean_results"))

	db.execErr = errors.New("permission denied")
	assert.ErrorContains(t, p.Migrate(context.Background()), "migrate clean_results")
}

func TestPostgres_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	p := NewPostgres(newFakeDB(), time.Hour)

	res := sampleResult("6f1c1f9e-6a2b-4d1c-9c55-2b8f7f0f9a10")
	require.NoError(t, p.Put(ctx, res))

	got, err := p.Get(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	require.NoError(t, p.Delete(ctx, res.ID))
	_, err = p.Get(ctx, res.ID)
	assert.ErrorIs(t, err, core.ErrResultNotFound)
	assert.NoError(t, p.Close())
}

func TestPostgres_ExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewPostgres(newFakeDB(), time.Minute)
	p.now = func() time.Time { return now }

	require.NoError(t, p.Put(ctx, sampleResult("old")))
	now = now.Add(50 * time.Second)
	require.NoError(t, p.Put(ctx, sampleResult("new")))
	now = now.Add(20 * time.Second)

	_, err := p.Get(ctx, "old")
	assert.ErrorIs(t, err, core.ErrResultNotFound)
	_, err = p.Get(ctx, "new")
	assert.NoError(t, err)

	purged, err := p.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestPostgres_ExecError(t *testing.T) {
	db := newFakeDB()
	db.execErr = errors.New("connection refused")
	p := NewPostgres(db, time.Hour)

	assert.ErrorContains(t, p.Put(context.Background(), sampleResult("a")), "insert result")
	_, err := p.PurgeExpired(context.Background())
	assert.ErrorContains(t, err, "purge results")
}

func TestOpenPostgres_BadURL(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "::not a url::", 5, time.Hour)
	assert.ErrorContains(t, err, "parse database URL")
}
