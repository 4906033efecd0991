package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/api/transport"
	"github.com/fastygo/storecore/pkg/httpcontext"
	accountUC "github.com/fastygo/storecore/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a customer
// @Tags auth
// @Router /api/auth/signup [post]
func (h *AccountHandler) Signup(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.SignupRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	user, err := h.uc.Signup(stdCtx, req.Name, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.AccountResponse{Message: "User created successfully", Created: true, User: user})
}

// @Summary Check customer credentials
// @Tags auth
// @Router /api/auth/verify [post]
func (h *AccountHandler) Verify(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.VerifyRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	user, err := h.uc.Authenticate(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.AccountResponse{User: user})
}

// @Summary Provision a federated customer on first login
// @Tags auth
// @Router /api/auth/provision [post]
func (h *AccountHandler) Provision(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.ProvisionRequest
	if err := h.decode(ctx, &req); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}

	user, created, err := h.uc.Provision(stdCtx, req.Name, req.Email)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.respondJSON(ctx, status, transport.AccountResponse{Created: created, User: user})
}
