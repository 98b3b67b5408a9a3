package history

import (
	"context"
	"sync"

	"github.com/911interpreters/portal/internal/api"
	"github.com/rs/zerolog"
)

// Backend is the slice of the API client the engine uses.
type Backend interface {
	ListCallHistory(ctx context.Context, page, pageSize int, startDate, endDate string) (*api.CallHistoryPage, error)
}

// Page is one resolved page of call history.
type Page struct {
	Records  []api.CallRecord
	Total    int
	PageNum  int
	PageSize int
}

// Engine issues paginated call-history queries with last-request-wins
// semantics: starting a new query cancels the previous in-flight one, so a
// late response can never land after a newer request's result.
type Engine struct {
	backend Backend
	logger  zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewEngine creates a query engine for one view instance.
func NewEngine(backend Backend, logger zerolog.Logger) *Engine {
	return &Engine{
		backend: backend,
		logger:  logger.With().Str("component", "call-history").Logger(),
	}
}

// Query fetches one page for the range. Any prior in-flight Query on this
// engine is canceled; a superseded call reports a canceled api.Error, which
// callers discard silently.
func (e *Engine) Query(ctx context.Context, page, pageSize int, r DateRange) (*Page, error) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	qctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	resp, err := e.backend.ListCallHistory(qctx, page, pageSize, r.StartParam(), r.EndParam())
	if err != nil {
		if api.IsCanceled(err) {
			return nil, &api.Error{Kind: api.KindCanceled, Message: "query superseded"}
		}
		return nil, err
	}

	// The response may have raced a newer query's cancellation; a canceled
	// context means a fresher request owns the view state now.
	if qctx.Err() != nil {
		return nil, &api.Error{Kind: api.KindCanceled, Message: "query superseded"}
	}

	e.logger.Debug().
		Int("page", page).
		Int("page_size", pageSize).
		Int("total", resp.Total).
		Str("start_date", r.StartParam()).
		Str("end_date", r.EndParam()).
		Msg("Call history page loaded")

	return &Page{
		Records:  resp.Records,
		Total:    resp.Total,
		PageNum:  page,
		PageSize: pageSize,
	}, nil
}

// Close cancels any in-flight query. Call on view teardown.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}
