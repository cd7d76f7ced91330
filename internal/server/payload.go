package server

import (
	"context"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/pkg/core/cache"
)

// EvalRequest is the payload of an "eval" message and the body of POST /api/v1/eval
type EvalRequest struct {
	Input string `json:"input"`
}

// EvalResult is the payload of a "result" message
type EvalResult struct {
	Input       string   `json:"input"`
	AST         string   `json:"ast"`
	Value       string   `json:"value"`
	OK          bool     `json:"ok"`
	Code        string   `json:"code,omitempty"`
	Error       string   `json:"error,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	DurationUS  int64    `json:"duration_us"` // 0 when Cached
	Cached      bool     `json:"cached,omitempty"`
}

// ErrorPayload is the payload of an "error" message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newEvalResult(res *pn.Result) EvalResult {
	out := EvalResult{
		Input:       res.Input,
		AST:         res.AST,
		Value:       res.ValueText(),
		OK:          res.OK,
		Diagnostics: res.Diagnostics,
		DurationUS:  res.Duration.Microseconds(),
	}
	if res.Err != nil {
		out.Code = mdwerror.GetCode(res.Err).String()
		out.Error = res.Err.Error()
	}
	return out
}

// evaluator is shared by the WebSocket and HTTP handlers
type evaluator struct {
	engine  *pn.Engine
	store   history.Store
	results *cache.Cache[*pn.Result] // nil when caching is off
	logger  *mdwlog.Logger
}

// evaluate answers one request, from the cache when possible, and records it.
// History failures are logged and never fail the request.
func (e *evaluator) evaluate(ctx context.Context, input string) EvalResult {
	res, cached := e.lookup(ctx, input)

	if e.store != nil {
		if err := e.store.Record(ctx, history.FromResult(history.SourceServer, res)); err != nil {
			e.logger.WarnWithErr("Failed to record evaluation", err)
		}
	}

	out := newEvalResult(res)
	if cached {
		out.Cached = true
		out.DurationUS = 0
	}
	return out
}

// lookup evaluates input through the result cache. Canceled evaluations are
// returned but never stored.
func (e *evaluator) lookup(ctx context.Context, input string) (*pn.Result, bool) {
	if e.results == nil {
		return e.engine.Evaluate(ctx, input), false
	}

	computed := false
	res, err := e.results.GetOrSet(cache.Key(input), func() (*pn.Result, error) {
		computed = true
		res := e.engine.Evaluate(ctx, input)
		if mdwerror.HasCode(res.Err, mdwerror.CodeCanceled) {
			return res, res.Err
		}
		return res, nil
	})
	if err != nil {
		e.logger.Debug("Evaluation not cached", mdwlog.Fields{"error": err.Error()})
	}
	return res, !computed
}
