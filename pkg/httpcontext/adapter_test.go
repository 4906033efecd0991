package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/storecore/pkg/logger"
)

func TestAttachPropagatesRequestID(t *testing.T) {
	var reqCtx fasthttp.RequestCtx
	reqCtx.Request.Header.Set("X-Request-ID", "abc-123")

	ctx, cancel := NewAdapter(time.Second).Attach(&reqCtx)
	defer cancel()

	assert.Equal(t, "abc-123", appLogger.RequestID(ctx))
	assert.Equal(t, "abc-123", string(reqCtx.Response.Header.Peek("X-Request-ID")))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

func TestAttachGeneratesRequestID(t *testing.T) {
	var reqCtx fasthttp.RequestCtx

	ctx, cancel := NewAdapter(0).Attach(&reqCtx)
	defer cancel()

	assert.NotEmpty(t, appLogger.RequestID(ctx))
	assert.Equal(t, appLogger.RequestID(ctx), string(reqCtx.Response.Header.Peek("X-Request-ID")))
}

func TestAttachCancelStopsContext(t *testing.T) {
	var reqCtx fasthttp.RequestCtx

	ctx, cancel := NewAdapter(time.Minute).Attach(&reqCtx)
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
