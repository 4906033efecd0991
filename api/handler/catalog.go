package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/api/transport"
	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/pkg/httpcontext"
	catalogUC "github.com/fastygo/storecore/usecase/catalog"
	searchUC "github.com/fastygo/storecore/usecase/search"
)

type CatalogHandler struct {
	baseHandler
	catalog *catalogUC.UseCase
	search  *searchUC.UseCase
}

func NewCatalogHandler(catalog *catalogUC.UseCase, search *searchUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		catalog:     catalog,
		search:      search,
	}
}

// @Summary List every cached product id
// @Tags catalog
// @Router /api/product-ids [get]
func (h *CatalogHandler) ProductIDs(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.respondJSON(ctx, http.StatusOK, h.catalog.ProductIDs(stdCtx))
}

// @Summary Look up products by id
// @Tags catalog
// @Router /api/products [get]
func (h *CatalogHandler) Products(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.catalog.LookupList(stdCtx, string(ctx.QueryArgs().Peek("ids")))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, domain.Views(products))
}

// @Summary Search products by term
// @Tags catalog
// @Router /search [get]
func (h *CatalogHandler) SearchQuery(ctx *fasthttp.RequestCtx) {
	h.runSearch(ctx, string(ctx.QueryArgs().Peek("q")))
}

// @Summary Search products by term
// @Tags catalog
// @Router /search [post]
func (h *CatalogHandler) SearchBody(ctx *fasthttp.RequestCtx) {
	var req transport.SearchRequest
	if err := h.decode(ctx, &req); err != nil {
		stdCtx, cancel := h.requestContext(ctx)
		defer cancel()
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.runSearch(ctx, req.SearchTerm)
}

func (h *CatalogHandler) runSearch(ctx *fasthttp.RequestCtx, term string) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.search.Search(stdCtx, term)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, domain.Views(products))
}
