package engine

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies why an engine invocation failed.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindSpawn
	KindExit
	KindParse
	KindTimeout
	KindCanceled
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindSpawn:
		return "spawn"
	case KindExit:
		return "exit"
	case KindParse:
		return "parse"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrNotFound = errors.New("engine executable not found")
	ErrSpawn    = errors.New("engine could not be started")
	ErrExit     = errors.New("engine exited with failure")
	ErrParse    = errors.New("engine output is not a JSON object")
	ErrTimeout  = errors.New("engine deadline exceeded")
	ErrCanceled = errors.New("engine invocation canceled")
	ErrRejected = errors.New("engine circuit open")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindSpawn:
		return ErrSpawn
	case KindExit:
		return ErrExit
	case KindParse:
		return ErrParse
	case KindTimeout:
		return ErrTimeout
	case KindCanceled:
		return ErrCanceled
	case KindRejected:
		return ErrRejected
	default:
		return nil
	}
}

// Error describes a failed invocation. Code and Stderr are set for KindExit.
type Error struct {
	Engine string
	Kind   Kind
	Code   int
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("engine %s: %s", e.Engine, e.Kind.sentinel())
	if e.Kind == KindExit {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
		if e.Stderr != "" {
			msg += ": " + truncate(e.Stderr, 256)
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *Error) Is(target error) bool {
	return e != nil && target != nil && target == e.Kind.sentinel()
}

// KindOf extracts the failure kind from err.
func KindOf(err error) (Kind, bool) {
	var eErr *Error
	if errors.As(err, &eErr) {
		return eErr.Kind, true
	}
	return 0, false
}

// classify turns any error returned by an Engine into an *Error carrying
// the engine name.
func classify(name string, err error) *Error {
	var eErr *Error
	if errors.As(err, &eErr) {
		if eErr.Engine == "" {
			eErr.Engine = name
		}
		return eErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Engine: name, Kind: KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Engine: name, Kind: KindCanceled, Err: err}
	default:
		return &Error{Engine: name, Kind: KindExit, Code: -1, Err: err}
	}
}

// contextError maps a finished context to Timeout or Canceled.
func contextError(ctx context.Context) *Error {
	switch err := ctx.Err(); {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case err != nil:
		return &Error{Kind: KindCanceled, Err: err}
	default:
		return nil
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
