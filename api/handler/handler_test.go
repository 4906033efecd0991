package handler_test

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	apiHandler "github.com/fastygo/storecore/api/handler"
	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/internal/infrastructure/monitor"
	"github.com/fastygo/storecore/internal/router"
	"github.com/fastygo/storecore/pkg/httpcontext"
	"github.com/fastygo/storecore/usecase"
	accountUC "github.com/fastygo/storecore/usecase/account"
	catalogUC "github.com/fastygo/storecore/usecase/catalog"
	favoritesUC "github.com/fastygo/storecore/usecase/favorites"
	purchaseUC "github.com/fastygo/storecore/usecase/purchase"
	recommendUC "github.com/fastygo/storecore/usecase/recommend"
	searchUC "github.com/fastygo/storecore/usecase/search"
	togetherUC "github.com/fastygo/storecore/usecase/together"
	trendingUC "github.com/fastygo/storecore/usecase/trending"
	"github.com/fastygo/storecore/usecase/usecasetest"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type server struct {
	client  *fasthttp.Client
	history *usecasetest.Transactions
	engines *usecasetest.Engines
}

func newServer(t *testing.T, engines map[string]engine.Func) *server {
	t.Helper()

	mascara := usecasetest.Product(1, "Essence Mascara")
	mascara.Category = "beauty"
	apple := usecasetest.Product(2, "Apple")
	apple.Category = "groceries"
	catalog := usecasetest.NewCatalog(mascara, apple, usecasetest.Product(3, "Lamp"))

	users := usecasetest.NewUsers(domain.User{UserID: "u-1", Email: "ada@example.com"})
	history := &usecasetest.Transactions{Items: []domain.Transaction{
		{ID: "t-1", UserID: "u-1", Products: []domain.ProductID{1, 2}},
	}}
	eng := usecasetest.NewEngines(engines)
	adapter := httpcontext.NewAdapter(time.Second)

	mon := monitor.New(monitor.Deps{Postgres: pingFunc(func(context.Context) error { return nil })}, time.Minute, nil)
	mon.Refresh()

	r := router.New(router.Handlers{
		Catalog: apiHandler.NewCatalogHandler(catalogUC.New(catalog), searchUC.New(catalog, eng, nil), adapter, nil),
		Recommendation: apiHandler.NewRecommendationHandler(apiHandler.RecommendationDeps{
			Recommend: recommendUC.New(catalog, users, history, eng, nil),
			Trending:  trendingUC.New(catalog, history, eng, nil),
			Together:  togetherUC.New(catalog, history, eng, nil),
			Favorites: favoritesUC.New(catalog, users, history, eng, nil),
		}, adapter, nil),
		Purchase: apiHandler.NewPurchaseHandler(purchaseUC.New(users, history, nil), adapter, nil),
		Account:  apiHandler.NewAccountHandler(accountUC.New(users, nil), adapter, nil),
		Health:   apiHandler.NewHealthHandler(mon, adapter, nil),
	}, router.Options{EnableMetrics: true})

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = fasthttp.Serve(ln, r.Handler) }()
	t.Cleanup(func() { _ = ln.Close() })

	return &server{
		client: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
		history: history,
		engines: eng,
	}
}

func (s *server) do(t *testing.T, method, uri, body string) (int, []byte) {
	t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI("http://storecore" + uri)
	if body != "" {
		req.Header.SetContentType("application/json")
		req.SetBodyString(body)
	}
	require.NoError(t, s.client.DoTimeout(req, resp, 5*time.Second))
	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func keys(t *testing.T, body []byte) []int64 {
	t.Helper()
	var views []struct {
		Key int64 `json:"key"`
	}
	require.NoError(t, json.Unmarshal(body, &views))
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.Key)
	}
	return out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Status string `json:"status"`
		Code   string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, "error", env.Status)
	return env.Code
}

func TestProductEndpoints(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.do(t, fasthttp.MethodGet, "/api/product-ids", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `[1,2,3]`, string(body))

	status, body = s.do(t, fasthttp.MethodGet, "/api/products?ids=3,1,404", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, []int64{1, 3}, keys(t, body))

	status, body = s.do(t, fasthttp.MethodGet, "/api/products", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID", errorCode(t, body))
}

func TestSearchFallsBackWhenEngineIsMissing(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.do(t, fasthttp.MethodGet, "/search?q=mascara", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, []int64{1}, keys(t, body))

	status, body = s.do(t, fasthttp.MethodPost, "/search", `{"searchTerm":"APPLE"}`)
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, []int64{2}, keys(t, body))

	status, body = s.do(t, fasthttp.MethodPost, "/search", `{}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID", errorCode(t, body))
}

func TestTrendingShapes(t *testing.T) {
	s := newServer(t, map[string]engine.Func{
		usecase.EngineTrending: func(_ context.Context, args []string, _ []byte) ([]byte, error) {
			if args[0] == "" {
				return []byte(`{"global_trending":["2","1"]}`), nil
			}
			return []byte(`{"tag_trending":["1"],"error":"not enough data"}`), nil
		},
	})

	status, body := s.do(t, fasthttp.MethodGet, "/api/trending", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, []int64{2, 1}, keys(t, body))

	status, body = s.do(t, fasthttp.MethodGet, "/api/trending/beauty", "")
	require.Equal(t, fasthttp.StatusOK, status)
	var byTag map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &byTag))
	assert.Equal(t, []int64{1}, keys(t, byTag["beauty"]))
	assert.JSONEq(t, `"not enough data"`, string(byTag["error"]))
}

func TestRecommendationsDegradeToEmpty(t *testing.T) {
	s := newServer(t, map[string]engine.Func{usecase.EngineRecommend: usecasetest.Crash()})

	status, body := s.do(t, fasthttp.MethodGet, "/api/recommendations/u-1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))

	status, body = s.do(t, fasthttp.MethodGet, "/api/recommendations?userId=ghost", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, _ = s.do(t, fasthttp.MethodGet, "/api/recommendations", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestBoughtTogether(t *testing.T) {
	s := newServer(t, map[string]engine.Func{usecase.EngineBoughtTogether: usecasetest.Reply(`{"recommendations":[3,2]}`)})

	status, body := s.do(t, fasthttp.MethodGet, "/api/bought-together?productId=1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, []int64{2, 3}, keys(t, body))

	status, _ = s.do(t, fasthttp.MethodGet, "/api/bought-together?productId=404", "")
	assert.Equal(t, fasthttp.StatusNotFound, status)

	status, _ = s.do(t, fasthttp.MethodGet, "/api/bought-together?productId=abc", "")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestBoughtTogetherEngineFailureIsEmpty(t *testing.T) {
	s := newServer(t, map[string]engine.Func{usecase.EngineBoughtTogether: usecasetest.Crash()})

	status, body := s.do(t, fasthttp.MethodGet, "/api/bought-together?productId=1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `[]`, string(body))
}

func TestFavoriteCategories(t *testing.T) {
	s := newServer(t, map[string]engine.Func{usecase.EngineFavorites: usecasetest.Reply(`{"favorite_categories":["beauty"]}`)})

	status, body := s.do(t, fasthttp.MethodGet, "/api/favorite-categories/u-1", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"favorite_categories":["beauty"]}`, string(body))
}

func TestPurchase(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.do(t, fasthttp.MethodPost, "/api/purchase", `{"user":"u-1","product":["3",2]}`)
	require.Equal(t, fasthttp.StatusOK, status)
	var resp struct {
		Message     string `json:"message"`
		Transaction struct {
			User    string `json:"user"`
			Product string `json:"product"`
		} `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "Purchase successful", resp.Message)
	assert.Equal(t, "u-1", resp.Transaction.User)
	assert.Equal(t, "3,2", resp.Transaction.Product)
	assert.Len(t, s.history.Items, 2)

	status, body = s.do(t, fasthttp.MethodPost, "/api/purchase", `{"user":"ghost","product":"1"}`)
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	status, _ = s.do(t, fasthttp.MethodPost, "/api/purchase", `not json`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
}

func TestSignupAndVerify(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.do(t, fasthttp.MethodPost, "/api/auth/signup", `{"name":"Grace","email":"grace@example.com","password":"hopper1"}`)
	require.Equal(t, fasthttp.StatusCreated, status)
	assert.NotContains(t, string(body), "hopper1")

	status, body = s.do(t, fasthttp.MethodPost, "/api/auth/signup", `{"name":"Grace","email":"grace@example.com","password":"hopper1"}`)
	assert.Equal(t, fasthttp.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	status, _ = s.do(t, fasthttp.MethodPost, "/api/auth/verify", `{"email":"grace@example.com","password":"hopper1"}`)
	assert.Equal(t, fasthttp.StatusOK, status)

	status, body = s.do(t, fasthttp.MethodPost, "/api/auth/verify", `{"email":"grace@example.com","password":"wrong"}`)
	assert.Equal(t, fasthttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, body))

	status, body = s.do(t, fasthttp.MethodPost, "/api/auth/signup", `{"email":"not-an-email","password":"hopper1"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Equal(t, "INVALID", errorCode(t, body))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, nil)

	status, body := s.do(t, fasthttp.MethodGet, "/health", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(body), `"postgresql":true`)

	s.do(t, fasthttp.MethodGet, "/api/product-ids", "")
	status, body = s.do(t, fasthttp.MethodGet, "/metrics", "")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Contains(t, string(body), "storecore_http_requests_total")
}
