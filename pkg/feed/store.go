// Package feed holds the paginated, filtered asset listing shown by the
// marketplace views.
package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/trusttrade/trusttrade/pkg/api"
	"github.com/trusttrade/trusttrade/pkg/logging"
	v1 "github.com/trusttrade/trusttrade/pkg/types/v1"
	"github.com/trusttrade/trusttrade/pkg/watch"
	"go.uber.org/zap"
)

var (
	// ErrFilterMismatch is recorded when a follow-up page is requested for
	// filters other than the ones the loaded items came from.
	ErrFilterMismatch = errors.New("requested page does not belong to the loaded filter set")
)

// Lister is the part of the API the feed needs. *api.Client implements it.
type Lister interface {
	ListAssets(ctx context.Context, p api.ListParams) (*v1.AssetPage, error)
}

// State is a snapshot of the feed. Items is a copy and may be kept by the
// caller.
type State struct {
	Items []v1.Asset
	// Filters is the filter record being edited by the view.
	Filters v1.Filters
	// Applied is the filter set Items was loaded with.
	Applied          v1.Filters
	Page             int
	HasMore          bool
	IsInitialLoading bool
	IsLoadingMore    bool
	// Err is the error of the last fetch, nil once a fetch succeeds.
	Err error
}

func (s State) IsLoading() bool { return s.IsInitialLoading || s.IsLoadingMore }

type Store struct {
	watch.Notifier

	mu     sync.Mutex
	source Lister
	log    *zap.Logger
	limit  int
	state  State

	// seq identifies the most recently issued request. Only its completion
	// is applied; anything older is stale.
	seq    uint64
	cancel context.CancelFunc
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option { return func(s *Store) { s.log = l } }

// WithPageSize sets the limit sent with every request.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

func New(source Lister, opts ...Option) *Store {
	s := Store{
		source: source,
		limit:  api.DefaultLimit,
	}
	for _, o := range opts {
		o(&s)
	}
	s.log = logging.OrNop(s.log)
	return &s
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.Items = make([]v1.Asset, len(s.state.Items))
	copy(st.Items, s.state.Items)
	return st
}

type request struct {
	seq     uint64
	filters v1.Filters
	page    int
	ctx     context.Context
	cancel  context.CancelFunc
}

// FetchPage loads page of the listing for filters and blocks until the
// result has been applied. Page 1 replaces the items; later pages append.
// Failures are logged and recorded in State.Err, leaving the items as they
// were.
func (s *Store) FetchPage(ctx context.Context, filters v1.Filters, page int) {
	s.mu.Lock()
	req, ok := s.begin(ctx, filters, page)
	s.mu.Unlock()
	if !ok {
		s.Notify()
		return
	}
	s.Notify()
	s.run(req)
}

// Refresh reloads the first page with the current filters.
func (s *Store) Refresh(ctx context.Context) {
	s.mu.Lock()
	filters := s.state.Filters
	s.mu.Unlock()
	s.FetchPage(ctx, filters, 1)
}

// UpdateFilters merges p into the filter record. It does not fetch; call
// Refresh once the edit is complete.
func (s *Store) UpdateFilters(p v1.FilterPatch) {
	s.mu.Lock()
	s.state.Filters = s.state.Filters.Merge(p)
	s.mu.Unlock()
	s.Notify()
}

// ClearFilters resets every filter and reloads the first page.
func (s *Store) ClearFilters(ctx context.Context) {
	s.mu.Lock()
	s.state.Filters = v1.Filters{}
	s.mu.Unlock()
	s.FetchPage(ctx, v1.Filters{}, 1)
}

// LoadMore appends the next page of the loaded filter set. It does nothing
// while a fetch is running or when the server reported no further pages.
func (s *Store) LoadMore(ctx context.Context) {
	s.mu.Lock()
	st := s.state
	if st.IsInitialLoading || st.IsLoadingMore || !st.HasMore {
		s.mu.Unlock()
		return
	}
	req, ok := s.begin(ctx, st.Applied, st.Page+1)
	s.mu.Unlock()
	s.Notify()
	if ok {
		s.run(req)
	}
}

// Close abandons any request in flight. The store keeps its last state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state.IsInitialLoading = false
	s.state.IsLoadingMore = false
}

// begin must be called with mu held.
func (s *Store) begin(ctx context.Context, filters v1.Filters, page int) (request, bool) {
	if page < 1 {
		page = 1
	}

	if err := filters.Validate(); err != nil {
		s.state.Err = err
		s.log.Warn("refusing to fetch with invalid filters", zap.Any("filters", filters), zap.Error(err))
		return request{}, false
	}
	if page > 1 && filters != s.state.Applied {
		s.state.Err = ErrFilterMismatch
		s.log.Warn("refusing to append a page from another filter set",
			zap.Int("page", page),
			zap.Any("filters", filters),
			zap.Any("applied", s.state.Applied))
		return request{}, false
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if page == 1 {
		s.state.IsInitialLoading = true
		s.state.IsLoadingMore = false
	} else {
		s.state.IsInitialLoading = false
		s.state.IsLoadingMore = true
	}

	return request{seq: s.seq, filters: filters, page: page, ctx: rctx, cancel: cancel}, true
}

func (s *Store) run(req request) {
	defer req.cancel()

	resp, err := s.source.ListAssets(req.ctx, api.ListParams{
		Filters: req.filters,
		Page:    req.page,
		Limit:   s.limit,
	})

	s.mu.Lock()
	if req.seq != s.seq {
		s.mu.Unlock()
		s.log.Debug("discarding stale feed response",
			zap.Int("page", req.page),
			zap.Any("filters", req.filters),
			zap.Error(err))
		return
	}

	s.cancel = nil
	s.state.IsInitialLoading = false
	s.state.IsLoadingMore = false

	if err == nil && resp == nil {
		err = api.ErrUnrecognizedShape
	}
	if err != nil {
		s.state.Err = err
		s.mu.Unlock()
		s.log.Error("failed to fetch assets",
			zap.Int("page", req.page),
			zap.Any("filters", req.filters),
			zap.Error(err))
		s.Notify()
		return
	}

	if req.page == 1 {
		s.state.Items = append([]v1.Asset(nil), resp.Assets...)
		s.state.Applied = req.filters
	} else {
		s.state.Items = append(s.state.Items, resp.Assets...)
	}
	s.state.Page = req.page
	s.state.HasMore = resp.HasMore()
	s.state.Err = nil
	s.mu.Unlock()

	s.log.Debug("fetched assets",
		zap.Int("page", req.page),
		zap.Int("received", len(resp.Assets)),
		zap.Bool("has_more", resp.HasMore()))
	s.Notify()
}
