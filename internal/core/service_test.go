package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is a minimal ResultStore for service tests.
type mapStore struct {
	mu      sync.Mutex
	results map[string]*Result
	putErr  error
}

func newMapStore() *mapStore {
	return &mapStore{results: make(map[string]*Result)}
}

func (m *mapStore) Put(_ context.Context, res *Result) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[res.ID] = res
	return nil
}

func (m *mapStore) Get(_ context.Context, id string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.results[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	return res, nil
}

func (m *mapStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.results, id)
	return nil
}

func (m *mapStore) Close() error { return nil }

type recordedRun struct {
	status string
	stats  Stats
}

type fakeRecorder struct {
	mu      sync.Mutex
	started int
	runs    []recordedRun
}

func (f *fakeRecorder) RunStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeRecorder) RunFinished(status string, _ time.Duration, stats Stats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, recordedRun{status: status, stats: stats})
}

const serviceInput = testHeader + "\n" +
	"EuroCo,https://www.euroco.eu,,,Series A,1000000,EUR,1100000,\n" +
	"DollarCo,http://dollar.co,,,Seed,,USD,2000000,\n" +
	"GrantCo,,,,Grant,10,EUR,1000,\n"

func TestService_Clean(t *testing.T) {
	store := newMapStore()
	rec := &fakeRecorder{}
	svc := NewService(store, ServiceOptions{Recorder: rec})

	res, err := svc.Clean(context.Background(), "export.csv", strings.NewReader(serviceInput), ReadOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "export.csv", res.FileName)
	assert.Equal(t, 3, res.Stats.InitialRows)
	assert.Equal(t, 2, res.Stats.FinalRows)
	assert.Len(t, res.InputPreview, 3)
	assert.Equal(t, Text("€M 1,818,182"), res.Rows[1].Amount)
	assert.False(t, res.CreatedAt.IsZero())

	stored, err := svc.Result(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Same(t, res, stored)

	assert.Equal(t, 1, rec.started)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, StatusSuccess, rec.runs[0].status)
	assert.Equal(t, 0, svc.LimiterStatus().Active)
}

func TestService_CleanPreviewDefault(t *testing.T) {
	svc := NewService(newMapStore(), ServiceOptions{PreviewRows: 1})

	res, err := svc.Clean(context.Background(), "a.csv", strings.NewReader(serviceInput), ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, res.InputPreview, 1)
}

func TestService_CleanInvalidInput(t *testing.T) {
	store := newMapStore()
	rec := &fakeRecorder{}
	svc := NewService(store, ServiceOptions{Recorder: rec})

	_, err := svc.Clean(context.Background(), "bad.csv", strings.NewReader("a,b\n1,2\n"), ReadOptions{})
	require.ErrorIs(t, err, ErrMissingColumn)

	assert.Empty(t, store.results)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, StatusFailed, rec.runs[0].status)
}

func TestService_CleanStoreError(t *testing.T) {
	store := newMapStore()
	store.putErr = errors.New("connection refused")
	svc := NewService(store, ServiceOptions{})

	_, err := svc.Clean(context.Background(), "a.csv", strings.NewReader(serviceInput), ReadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store result")
}

func TestService_CleanRejectedWhenBusy(t *testing.T) {
	rec := &fakeRecorder{}
	svc := NewService(newMapStore(), ServiceOptions{MaxConcurrent: 1, MaxWait: 50 * time.Millisecond, Recorder: rec})

	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	_, err := svc.Clean(context.Background(), "a.csv", strings.NewReader(serviceInput), ReadOptions{})
	require.ErrorIs(t, err, ErrTooManyUploads)
	assert.Zero(t, rec.started)
	require.Len(t, rec.runs, 1)
	assert.Equal(t, StatusRejected, rec.runs[0].status)
}

func TestService_ResultNotFound(t *testing.T) {
	svc := NewService(newMapStore(), ServiceOptions{})

	_, err := svc.Result(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, err = svc.Result(context.Background(), "6f1c1f9e-6a2b-4d1c-9c55-2b8f7f0f9a10")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestService_WaitForIdle(t *testing.T) {
	svc := NewService(newMapStore(), ServiceOptions{})
	assert.NoError(t, svc.WaitForIdle(context.Background()))
}

func TestContextValues(t *testing.T) {
	ctx := ContextWithUserAgent(ContextWithClientIP(context.Background(), "10.0.0.1"), "curl/8")
	assert.Equal(t, "10.0.0.1", ClientIPFromContext(ctx))
	assert.Equal(t, "curl/8", UserAgentFromContext(ctx))
	assert.Empty(t, ClientIPFromContext(context.Background()))
}
