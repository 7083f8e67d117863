// Package engine runs the ordered adapter chain over extracted pages.
// Adapters are tried in priority order (format-specific before generic
// fallback); the first adapter yielding at least one row wins. Warnings
// from rejected attempts are retained by default so that callers can see
// why earlier, more precise adapters bailed out.
package engine

import (
	"log/slog"

	"github.com/tmashinini/bankconvert/internal/domain/statement"
	"github.com/tmashinini/bankconvert/internal/domain/statement/adapter"
	"github.com/tmashinini/bankconvert/internal/domain/statement/scan"
)

// Engine is the adapter chain. It holds no per-request state; Parse may be
// called concurrently.
type Engine struct {
	adapters []adapter.Adapter
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAdapters replaces the default chain. Order is priority order.
func WithAdapters(adapters ...adapter.Adapter) Option {
	return func(e *Engine) { e.adapters = adapters }
}

// New builds an engine with the default chain: FNB first, generic fallback
// last.
func New(logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		adapters: []adapter.Adapter{adapter.NewFNB(), adapter.NewGeneric()},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse tries each adapter in order and accepts the first non-empty
// result. An all-empty outcome returns zero rows plus the accumulated
// warnings; callers must treat that as legitimate, not as an error.
func (e *Engine) Parse(pages []statement.Page, currency string, opts statement.Options) adapter.Result {
	yearHint := scan.YearHint(concatText(pages))
	actx := adapter.Context{
		YearHint: yearHint,
		Currency: currency,
		Toggles:  opts.Toggles,
	}

	var aggregate []string
	for _, a := range e.adapters {
		out := a.Parse(pages, actx)
		if len(out.Rows) > 0 {
			e.logger.Debug("adapter accepted",
				slog.String("adapter", a.Name()),
				slog.Int("rows", len(out.Rows)),
			)
			warnings := out.Warnings
			if opts.KeepRejectedWarnings {
				warnings = append(aggregate, out.Warnings...)
			}
			return adapter.Result{Rows: out.Rows, Warnings: warnings}
		}
		e.logger.Debug("adapter produced no rows", slog.String("adapter", a.Name()))
		aggregate = append(aggregate, out.Warnings...)
	}

	return adapter.Result{Warnings: aggregate}
}

func concatText(pages []statement.Page) string {
	var text string
	for _, p := range pages {
		text += p.Text + "\n"
	}
	return text
}
