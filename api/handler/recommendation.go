package handler

import (
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/storecore/api/transport"
	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/pkg/httpcontext"
	"github.com/fastygo/storecore/usecase"
	favoritesUC "github.com/fastygo/storecore/usecase/favorites"
	recommendUC "github.com/fastygo/storecore/usecase/recommend"
	togetherUC "github.com/fastygo/storecore/usecase/together"
	trendingUC "github.com/fastygo/storecore/usecase/trending"
)

// RecommendationHandler serves the engine-backed ranking endpoints. All of
// them degrade to an empty result when the engine fails.
type RecommendationHandler struct {
	baseHandler
	recommend *recommendUC.UseCase
	trending  *trendingUC.UseCase
	together  *togetherUC.UseCase
	favorites *favoritesUC.UseCase
}

type RecommendationDeps struct {
	Recommend *recommendUC.UseCase
	Trending  *trendingUC.UseCase
	Together  *togetherUC.UseCase
	Favorites *favoritesUC.UseCase
}

func NewRecommendationHandler(deps RecommendationDeps, adapter *httpcontext.Adapter, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		baseHandler: newBaseHandler(adapter, logger),
		recommend:   deps.Recommend,
		trending:    deps.Trending,
		together:    deps.Together,
		favorites:   deps.Favorites,
	}
}

// @Summary Personalized recommendations
// @Tags recommendations
// @Router /api/recommendations [get]
// @Router /api/recommendations/{userId} [get]
func (h *RecommendationHandler) Recommendations(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID := pathParam(ctx, "userId")
	if userID == "" {
		userID = string(ctx.QueryArgs().Peek("userId"))
	}

	products, err := h.recommend.Recommend(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, domain.Views(products))
}

// @Summary Trending products, globally or for one tag
// @Tags recommendations
// @Router /api/trending [get]
// @Router /api/trending/{tag} [get]
func (h *RecommendationHandler) Trending(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result := h.trending.Trending(stdCtx, pathParam(ctx, "tag"))
	if result.Global() {
		h.respondJSON(ctx, http.StatusOK, domain.Views(result.Products))
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TrendingByTag(result.Tag, domain.Views(result.Products), result.Error))
}

// @Summary Products frequently bought with a product
// @Tags recommendations
// @Router /api/bought-together [get]
func (h *RecommendationHandler) BoughtTogether(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, err := h.together.BoughtTogether(stdCtx, string(ctx.QueryArgs().Peek("productId")))
	if err != nil {
		var eErr *engine.Error
		if !errors.As(err, &eErr) {
			h.respondError(ctx, stdCtx, err)
			return
		}
		usecase.Degraded(h.logger, "bought-together", usecase.ClassRecommendation, err)
		products = []domain.Product{}
	}
	h.respondJSON(ctx, http.StatusOK, domain.Views(products))
}

// @Summary A user's favorite categories
// @Tags recommendations
// @Router /api/favorite-categories/{userId} [get]
func (h *RecommendationHandler) FavoriteCategories(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.favorites.Favorites(stdCtx, pathParam(ctx, "userId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.FavoritesResponse{FavoriteCategories: categories})
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}
