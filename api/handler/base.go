package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/api/transport"
	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/validation"
	"github.com/fastygo/storecore/pkg/httpcontext"
	appLogger "github.com/fastygo/storecore/pkg/logger"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		body = []byte(`{"status":"error","code":"INTERNAL","error":"internal server error"}`)
	}
	ctx.SetBody(body)
}

// respondError maps err onto the error envelope. Store and internal
// failures are logged and answered with a generic message.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, reqCtx context.Context, err error) {
	status, code := mapError(err)
	message := err.Error()
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		message = dErr.Message
	}
	if status >= http.StatusInternalServerError {
		appLogger.WithRequestID(reqCtx, h.logger).Error("request failed",
			zap.String("path", string(ctx.Path())),
			zap.String("code", code),
			zap.Error(err))
		message = genericMessage(code)
	}
	h.respondJSON(ctx, status, transport.NewError(code, message, nil))
}

// decode unmarshals the request body into v and validates it.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, v interface{}) error {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		var dErr *domain.Error
		if errors.As(err, &dErr) {
			return dErr
		}
		return domain.ErrInvalidPayload
	}
	return validation.Struct(v)
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	case domain.IsDomainError(err, domain.ErrCodeStore):
		return http.StatusInternalServerError, string(domain.ErrCodeStore)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}

func genericMessage(code string) string {
	if code == string(domain.ErrCodeStore) {
		return "storage is unavailable"
	}
	return "internal server error"
}
