package rates

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"currencyconverter/internal/apperrors"
)

// DefaultStaleAfter is the age at which a cached snapshot becomes eligible for refresh.
const DefaultStaleAfter = time.Hour

// DefaultRefreshTimeout bounds one shared fetch-and-save round trip.
const DefaultRefreshTimeout = 30 * time.Second

// Fetcher obtains a fresh snapshot from a remote pricing service.
type Fetcher interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Source tells where an acquired snapshot came from.
type Source int

// Snapshot sources.
const (
	SourceRemote Source = iota + 1
	SourceCache
	// SourceStaleCache is the degraded path: a refresh failed and the last
	// known snapshot was served instead.
	SourceStaleCache
)

func (s Source) String() string {
	switch s {
	case SourceRemote:
		return "remote"
	case SourceCache:
		return "cache"
	case SourceStaleCache:
		return "stale-cache"
	default:
		return "unknown"
	}
}

// Acquisition is the outcome of Store.Acquire.
type Acquisition struct {
	Snapshot *Snapshot
	Source   Source
	// FetchErr is the refresh failure that caused a stale snapshot to be served.
	FetchErr error
	// SaveErr is a tolerated failure to persist a freshly fetched snapshot.
	SaveErr error
}

// Degraded reports whether a stale snapshot was served after a failed refresh.
func (a *Acquisition) Degraded() bool { return a.Source == SourceStaleCache }

// Store decides whether to trust the cached snapshot or fetch a new one.
type Store struct {
	mode       Mode
	fetcher    Fetcher
	storage    Storage
	staleAfter time.Duration
	timeout    time.Duration
	now        func() time.Time
	log        *zap.SugaredLogger
	group      singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithStaleAfter overrides DefaultStaleAfter.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithRefreshTimeout overrides DefaultRefreshTimeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for degraded-path reporting.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore validates the configuration once. storage may be nil only in
// ModeRemote; fetcher may be nil only in ModeCachedOnly.
func NewStore(ctx context.Context, mode Mode, fetcher Fetcher, storage Storage, opts ...Option) (*Store, error) {
	if !mode.Valid() {
		return nil, apperrors.New(apperrors.KindInvalidConfig, "invalid rates mode %q", string(mode))
	}
	if storage == nil && mode != ModeRemote {
		return nil, apperrors.New(apperrors.KindInvalidConfig, "rates mode %s requires a cache location", mode)
	}
	if fetcher == nil && mode != ModeCachedOnly {
		return nil, apperrors.New(apperrors.KindInvalidConfig, "rates mode %s requires a remote provider", mode)
	}

	s := &Store{
		mode:       mode,
		fetcher:    fetcher,
		storage:    storage,
		staleAfter: DefaultStaleAfter,
		timeout:    DefaultRefreshTimeout,
		now:        time.Now,
		log:        zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if mode != ModeRemote {
		if err := storage.Check(ctx); err != nil {
			if apperrors.KindOf(err) != apperrors.KindStorage {
				err = apperrors.Wrap(apperrors.KindStorage, err, "check rates cache %s", storage.Location())
			}
			return nil, err
		}
	}
	return s, nil
}

// Mode returns the configured mode.
func (s *Store) Mode() Mode { return s.mode }

// StaleAfter returns the staleness threshold.
func (s *Store) StaleAfter() time.Duration { return s.staleAfter }

// Location returns the cache location, or "" when none is configured.
func (s *Store) Location() string {
	if s.storage == nil {
		return ""
	}
	return s.storage.Location()
}

// Snapshot returns a valid snapshot for the configured mode.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	acq, err := s.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return acq.Snapshot, nil
}

// Acquire returns a snapshot together with where it came from.
func (s *Store) Acquire(ctx context.Context) (*Acquisition, error) {
	switch s.mode {
	case ModeRemote:
		return s.acquireRemote(ctx)
	case ModeCachedOnly:
		return s.acquireCached(ctx)
	default:
		return s.acquireRefreshing(ctx)
	}
}

// Refresh fetches and persists a new snapshot regardless of the cached one's
// age. It is not allowed in ModeCachedOnly.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	if s.mode == ModeCachedOnly {
		return nil, apperrors.New(apperrors.KindInvalidConfig, "refresh is not allowed in %s mode", s.mode)
	}
	res, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if res.saveErr != nil {
		return nil, res.saveErr
	}
	return res.snap, nil
}

func (s *Store) acquireRemote(ctx context.Context) (*Acquisition, error) {
	res, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if res.saveErr != nil {
		return nil, res.saveErr
	}
	return &Acquisition{Snapshot: res.snap, Source: SourceRemote}, nil
}

func (s *Store) acquireCached(ctx context.Context) (*Acquisition, error) {
	snap, err := s.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Acquisition{Snapshot: snap, Source: SourceCache}, nil
}

func (s *Store) acquireRefreshing(ctx context.Context) (*Acquisition, error) {
	cached, loadErr := s.storage.Load(ctx)
	if loadErr != nil {
		if !errors.Is(loadErr, ErrNoSnapshot) {
			s.log.Warnw("Rates cache unreadable, refreshing", "location", s.storage.Location(), "error", loadErr)
		}
		cached = nil
	} else if !cached.IsStale(s.now(), s.staleAfter) {
		return &Acquisition{Snapshot: cached, Source: SourceCache}, nil
	}

	res, err := s.refresh(ctx)
	if err != nil {
		if cached == nil {
			return nil, apperrors.Wrap(apperrors.KindStorage, errors.Join(loadErr, err),
				"no usable rates cache at %s and refresh failed", s.storage.Location())
		}
		s.log.Warnw("Rates refresh failed, serving stale cache",
			"location", s.storage.Location(),
			"snapshot_time", cached.ProducedAt(),
			"error", err,
		)
		return &Acquisition{Snapshot: cached, Source: SourceStaleCache, FetchErr: err}, nil
	}

	acq := &Acquisition{Snapshot: res.snap, Source: SourceRemote}
	if res.saveErr != nil {
		if cached == nil {
			return nil, res.saveErr
		}
		s.log.Warnw("Failed to persist refreshed rates", "location", s.storage.Location(), "error", res.saveErr)
		acq.SaveErr = res.saveErr
	}
	return acq, nil
}

type refreshResult struct {
	snap    *Snapshot
	saveErr error
}

// refresh fetches and saves a snapshot. Concurrent callers share one round
// trip, which runs detached from any single caller's cancellation and is
// bounded by the refresh timeout. Each caller still stops waiting when its own
// ctx is done.
func (s *Store) refresh(ctx context.Context) (*refreshResult, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		snap, err := s.fetcher.Fetch(rctx)
		if err != nil {
			if apperrors.KindOf(err) != apperrors.KindFetch {
				err = apperrors.Wrap(apperrors.KindFetch, err, "fetch rates")
			}
			return nil, err
		}
		res := &refreshResult{snap: snap}
		if s.storage != nil {
			res.saveErr = s.storage.Save(rctx, snap)
		}
		return res, nil
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*refreshResult), nil
	case <-ctx.Done():
		return nil, apperrors.Wrap(apperrors.KindFetch, ctx.Err(), "fetch rates")
	}
}
