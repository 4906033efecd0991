package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/api/transport"
	"github.com/fastygo/storecore/pkg/httpcontext"
	purchaseUC "github.com/fastygo/storecore/usecase/purchase"
)

type PurchaseHandler struct {
	baseHandler
	uc *purchaseUC.UseCase
}

func NewPurchaseHandler(uc *purchaseUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Record a purchase
// @Tags purchases
// @Router /api/purchase [post]
func (h *PurchaseHandler) Record(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.PurchaseRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	tx, err := h.uc.Record(stdCtx, req.User, req.Product)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.PurchaseResponse{
		Message:     "Purchase successful",
		Transaction: tx,
	})
}
