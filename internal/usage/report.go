// Package usage builds the customer's usage report: summary totals plus a
// paginated per-language breakdown with client-side percentage-of-total.
package usage

import (
	"context"
	"fmt"
	"math"

	"github.com/911interpreters/portal/internal/api"
	"github.com/rs/zerolog"
)

// Backend is the slice of the API client the aggregator uses.
type Backend interface {
	GetUsageSummary(ctx context.Context) (*api.UsageTotals, error)
	ListLanguageUsage(ctx context.Context, page, pageSize int) (*api.LanguageUsagePage, error)
}

// Summary is the report header.
type Summary struct {
	TotalCalls   int
	TotalMinutes float64
}

// Row is one per-language breakdown line, fully resolved for display.
type Row struct {
	Language   string
	TotalCalls int
	Seconds    float64
	Minutes    float64
	Percent    string
}

// Breakdown is one page of the per-language table.
type Breakdown struct {
	Rows               []Row
	Total              int
	DenominatorSeconds float64
}

// Aggregator assembles the usage report.
type Aggregator struct {
	backend Backend
	logger  zerolog.Logger
}

// NewAggregator creates a usage report aggregator.
func NewAggregator(backend Backend, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		backend: backend,
		logger:  logger.With().Str("component", "usage-report").Logger(),
	}
}

// LoadSummary fetches the customer's totals.
func (a *Aggregator) LoadSummary(ctx context.Context) (*Summary, error) {
	totals, err := a.backend.GetUsageSummary(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	switch {
	case totals.TotalCalls != nil:
		s.TotalCalls = *totals.TotalCalls
	case totals.Calls != nil:
		s.TotalCalls = *totals.Calls
	}
	switch {
	case totals.TotalMinutes != nil:
		s.TotalMinutes = *totals.TotalMinutes
	case totals.Minutes != nil:
		s.TotalMinutes = *totals.Minutes
	}
	return s, nil
}

// LoadBreakdown fetches one page of per-language usage. The percentage
// denominator is the customer's grand-total seconds reported alongside the
// page, not the sum of the visible rows.
func (a *Aggregator) LoadBreakdown(ctx context.Context, page, pageSize int) (*Breakdown, error) {
	resp, err := a.backend.ListLanguageUsage(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	denom := resp.TotalSecondsByCustomer
	rows := make([]Row, len(resp.Rows))
	for i, raw := range resp.Rows {
		seconds := RowSeconds(raw)
		rows[i] = Row{
			Language:   raw.Language,
			TotalCalls: raw.TotalCalls,
			Seconds:    seconds,
			Minutes:    SecondsToMinutes(seconds),
			Percent:    Percent(seconds, denom),
		}
	}

	a.logger.Debug().
		Int("page", page).
		Int("rows", len(rows)).
		Float64("denominator_seconds", denom).
		Msg("Usage breakdown loaded")

	return &Breakdown{Rows: rows, Total: resp.Total, DenominatorSeconds: denom}, nil
}

// RowSeconds reconciles the row's two field sets: an explicit seconds field
// wins; otherwise a minutes field is converted.
func RowSeconds(row api.LanguageUsageRow) float64 {
	switch {
	case row.TotalSeconds != nil:
		return *row.TotalSeconds
	case row.Seconds != nil:
		return *row.Seconds
	case row.TotalMinutes != nil:
		return *row.TotalMinutes * 60
	case row.Minutes != nil:
		return *row.Minutes * 60
	default:
		return 0
	}
}

// SecondsToMinutes converts for display, rounded to two decimal places.
func SecondsToMinutes(seconds float64) float64 {
	return math.Round(seconds/60*100) / 100
}

// Percent renders a row's share of the denominator to one decimal place.
// A zero denominator reports 0% rather than dividing.
func Percent(seconds, denominatorSeconds float64) string {
	if denominatorSeconds == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", seconds/denominatorSeconds*100)
}
