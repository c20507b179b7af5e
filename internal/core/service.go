package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/crunchclean/internal/logging"
	"github.com/google/uuid"
)

// DefaultCleanTimeout bounds a single cleaning run, including the wait for
// an upload slot.
var DefaultCleanTimeout = 2 * time.Minute

// Run outcomes reported to a Recorder.
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
)

// ResultStore keeps cleaned results so they can be shown and downloaded
// again. Implementations must be safe for concurrent use and return
// ErrResultNotFound for unknown or expired ids.
type ResultStore interface {
	Put(ctx context.Context, res *Result) error
	Get(ctx context.Context, id string) (*Result, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Recorder observes cleaning runs, typically for metrics.
type Recorder interface {
	RunStarted()
	RunFinished(status string, elapsed time.Duration, stats Stats)
}

type nopRecorder struct{}

func (nopRecorder) RunStarted() {}
func (nopRecorder) RunFinished(string, time.Duration, Stats) {}

// ServiceOptions configures a Service. Zero values select defaults.
type ServiceOptions struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
	PreviewRows   int
	Recorder      Recorder
}

// Service runs cleaning jobs and keeps their results.
type Service struct {
	store       ResultStore
	limiter     *UploadLimiter
	recorder    Recorder
	timeout     time.Duration
	previewRows int
	now         func() time.Time
}

// NewService creates a Service backed by store.
func NewService(store ResultStore, opts ServiceOptions) *Service {
	rec := opts.Recorder
	if rec == nil {
		rec = nopRecorder{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultCleanTimeout
	}
	return &Service{
		store:       store,
		limiter:     NewUploadLimiter(opts.MaxConcurrent, opts.MaxWait),
		recorder:    rec,
		timeout:     timeout,
		previewRows: opts.PreviewRows,
		now:         time.Now,
	}
}

// Clean parses r, cleans it and stores the result under a new id.
//
// Runs are limited by the upload limiter; when no slot frees up in time the
// call fails with ErrTooManyUploads. opts.PreviewRows, when zero, falls back
// to the service default.
func (s *Service) Clean(ctx context.Context, fileName string, r io.Reader, opts ReadOptions) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	id := uuid.NewString()
	logger := logging.WithFields(ctx,
		"run_id", id,
		"file", fileName,
	)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		logger = logger.With("user_agent", ua)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("clean rejected", "error", err)
		s.recorder.RunFinished(StatusRejected, 0, Stats{})
		return nil, err
	}
	defer s.limiter.Release()

	s.recorder.RunStarted()
	start := s.now()

	if opts.PreviewRows == 0 {
		opts.PreviewRows = s.previewRows
	}

	res, err := s.run(ctx, id, fileName, r, opts)
	elapsed := s.now().Sub(start)
	if err != nil {
		logger.Warn("clean failed", "error", err, "duration", elapsed)
		s.recorder.RunFinished(StatusFailed, elapsed, Stats{})
		return nil, err
	}
	res.Duration = elapsed

	if err := s.store.Put(ctx, res); err != nil {
		logger.Error("store result failed", "error", err)
		s.recorder.RunFinished(StatusFailed, elapsed, res.Stats)
		return nil, fmt.Errorf("store result: %w", err)
	}

	logger.Info("clean completed",
		"initial_rows", res.Stats.InitialRows,
		"filtered_rows", res.Stats.FilteredRows,
		"final_rows", res.Stats.FinalRows,
		"exchange_rate", res.Stats.ExchangeRate,
		"backfilled_rows", res.Stats.BackfilledRows,
		"duration", elapsed,
	)
	s.recorder.RunFinished(StatusSuccess, elapsed, res.Stats)

	return res, nil
}

func (s *Service) run(ctx context.Context, id, fileName string, r io.Reader, opts ReadOptions) (*Result, error) {
	table, err := ReadTable(r, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := Clean(table)
	return &Result{
		ID:           id,
		FileName:     fileName,
		CreatedAt:    s.now().UTC(),
		Stats:        cleaned.Stats,
		InputHeader:  table.Header,
		InputPreview: table.Preview,
		Rows:         cleaned.Rows,
	}, nil
}

// Result returns a stored result.
func (s *Service) Result(ctx context.Context, id string) (*Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
	}
	return s.store.Get(ctx, id)
}

// LimiterStatus reports the state of the upload limiter.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForIdle blocks until no run is active or ctx is done.
func (s *Service) WaitForIdle(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
