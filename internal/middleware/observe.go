package middleware

import (
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/internal/metrics"
)

// Observe counts requests per route pattern and logs slow or failed ones.
// route is the registered pattern, not the raw path, to keep label
// cardinality bounded.
func Observe(route string, slow time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			elapsed := time.Since(start)
			status := ctx.Response.StatusCode()

			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			if status >= fasthttp.StatusInternalServerError || (slow > 0 && elapsed >= slow) {
				logger.Warn("request",
					zap.String("route", route),
					zap.ByteString("method", ctx.Method()),
					zap.Int("status", status),
					zap.Duration("elapsed", elapsed),
					zap.ByteString("request_id", ctx.Response.Header.Peek("X-Request-ID")))
			}
		}
	}
}
