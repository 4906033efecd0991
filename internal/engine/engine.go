// Package engine runs the opaque scoring engines (recommend, trending,
// search, bought_together, fav_category) and turns their output into
// Documents with canonical product ids.
package engine

import "context"

// Engine is one scoring engine. Run receives the argument vector and an
// optional JSON payload and returns the raw output, which must be a single
// JSON object. Failures should be *Error values; anything else is
// classified by the Dispatcher.
type Engine interface {
	Run(ctx context.Context, args []string, payload []byte) ([]byte, error)
}

// Func adapts an in-process function to Engine.
type Func func(ctx context.Context, args []string, payload []byte) ([]byte, error)

func (f Func) Run(ctx context.Context, args []string, payload []byte) ([]byte, error) {
	return f(ctx, args, payload)
}
