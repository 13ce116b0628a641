package findash

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Revision identifies one version of the dataset held by a Store.
type Revision struct {
	ID uuid.UUID
	N  uint64 // 0 means no dataset was ever set
	At time.Time
}

// ETag returns the revision as an HTTP entity tag.
func (r Revision) ETag() string { return `"` + r.ID.String() + `"` }

func (r Revision) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", r.ID.String())
	w.Append("n", r.N)
	w.Append("at", r.At.UTC().Format(time.RFC3339Nano))
	return w.MarshalJSON()
}

// Source loads a dataset from some storage.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Sink stores a dataset.
type Sink interface {
	Save(ctx context.Context, ds *Dataset) error
}

// Store holds the current dataset and the dashboard derived from it.
//
// Every Set creates a new Revision and notifies subscribers; the dashboard is
// recomputed lazily, at most once per revision.
type Store struct {
	logger *zap.Logger

	mu     sync.Mutex
	ds     *Dataset
	opts   Options
	rev    Revision
	cached *Dashboard
	cacheN uint64
	subs   map[*subscription]struct{}
	closed bool
	done   chan struct{}

	computeMu sync.Mutex // serializes dashboard computations
}

type subscription struct {
	ch chan Revision
}

// NewStore returns an empty store. A nil logger disables logging.
func NewStore(opts Options, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger: logger,
		opts:   opts,
		subs:   make(map[*subscription]struct{}),
		done:   make(chan struct{}),
	}
}

// Set replaces the dataset and notifies subscribers of the new revision.
func (s *Store) Set(ds *Dataset) Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	return s.bump()
}

// SetOptions changes how the dashboard is computed. It creates a new
// revision of the same dataset.
func (s *Store) SetOptions(opts Options) Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	return s.bump()
}

// bump creates a new revision, s.mu must be held.
func (s *Store) bump() Revision {
	s.rev = Revision{ID: uuid.New(), N: s.rev.N + 1, At: time.Now()}
	s.logger.Debug("new dataset revision",
		zap.String("revision", s.rev.ID.String()),
		zap.Uint64("n", s.rev.N),
		zap.Int("records", s.datasetLen()))
	for sub := range s.subs {
		notify(sub.ch, s.rev)
	}
	return s.rev
}

func (s *Store) datasetLen() int {
	if s.ds == nil {
		return 0
	}
	return s.ds.Len()
}

// notify sends rev without blocking, replacing a revision not yet received.
func notify(ch chan Revision, rev Revision) {
	select {
	case ch <- rev:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- rev
	}
}

// Dataset returns the current dataset and its revision. The dataset is nil
// until the first Set.
func (s *Store) Dataset() (*Dataset, Revision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds, s.rev
}

// Revision returns the current revision.
func (s *Store) Revision() Revision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// Options returns the current dashboard options.
func (s *Store) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Dashboard returns the dashboard of the current revision.
func (s *Store) Dashboard() (*Dashboard, Revision, error) {
	if d, rev, ok := s.cachedDashboard(); ok {
		return d, rev, nil
	}

	s.computeMu.Lock()
	defer s.computeMu.Unlock()
	// another caller may have computed it while we were waiting.
	if d, rev, ok := s.cachedDashboard(); ok {
		return d, rev, nil
	}

	s.mu.Lock()
	ds, opts, rev := s.ds, s.opts, s.rev
	s.mu.Unlock()
	if ds == nil {
		return nil, rev, ErrEmptyDataset
	}

	start := time.Now()
	d, err := NewDashboard(ds, opts)
	if err != nil {
		return nil, rev, fmt.Errorf("cannot compute dashboard for revision %d: %w", rev.N, err)
	}
	s.logger.Debug("dashboard computed",
		zap.Uint64("n", rev.N),
		zap.Duration("elapsed", time.Since(start)))

	s.mu.Lock()
	if s.rev.N == rev.N {
		s.cached, s.cacheN = d, rev.N
	}
	s.mu.Unlock()
	return d, rev, nil
}

func (s *Store) cachedDashboard() (*Dashboard, Revision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.cacheN == s.rev.N {
		return s.cached, s.rev, true
	}
	return nil, s.rev, false
}

// Subscribe returns a channel receiving every later revision.
//
// A slow subscriber only receives the latest revision. The channel is closed
// when ctx is done or the store is closed.
func (s *Store) Subscribe(ctx context.Context) <-chan Revision {
	sub := &subscription{ch: make(chan Revision, 1)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		s.unsubscribe(sub)
	}()
	return sub.ch
}

func (s *Store) unsubscribe(sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		close(sub.ch)
	}
}

// Close closes every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.done)
}

// Reload loads a dataset from src and sets it.
func (s *Store) Reload(ctx context.Context, src Source) (Revision, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return s.Revision(), err
	}
	return s.Set(ds), nil
}

// CSVFile is a Source and a Sink backed by a CSV file.
type CSVFile struct {
	Path     string
	Currency string
}

func (f CSVFile) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadCSVFile(f.Path, f.Currency)
}

func (f CSVFile) Save(ctx context.Context, ds *Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteCSVFile(f.Path, ds)
}
