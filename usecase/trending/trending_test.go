package trending

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/usecase"
	"github.com/fastygo/storecore/usecase/usecasetest"
)

func setup(fn engine.Func) (*UseCase, *usecasetest.Engines, *usecasetest.Transactions) {
	catalog := usecasetest.NewCatalog(usecasetest.Product(1, "Mascara"), usecasetest.Product(2, "Apple"))
	history := &usecasetest.Transactions{Items: []domain.Transaction{
		{UserID: "u-1", Products: []domain.ProductID{1, 2}},
	}}
	engines := usecasetest.NewEngines(map[string]engine.Func{usecase.EngineTrending: fn})
	return New(catalog, history, engines, nil), engines, history
}

func TestGlobalTrending(t *testing.T) {
	for _, tag := range []string{"", "all"} {
		uc, engines, _ := setup(usecasetest.Reply(`{"global_trending":["2","1","404"]}`))

		result := uc.Trending(context.Background(), tag)
		assert.True(t, result.Global())
		require.Len(t, result.Products, 2)
		assert.Equal(t, domain.ProductID(2), result.Products[0].ID)
		assert.Equal(t, []string{""}, engines.Calls[0].Args)
	}
}

func TestTagTrendingPassesErrorThrough(t *testing.T) {
	uc, engines, _ := setup(usecasetest.Reply(`{"tag_trending":["1"],"error":"sparse data"}`))

	result := uc.Trending(context.Background(), "beauty")
	assert.Equal(t, "beauty", result.Tag)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "sparse data", result.Error)
	assert.Equal(t, []string{"beauty"}, engines.Calls[0].Args)
}

func TestTagTrendingKeepsErrorWhenRankingIsMalformed(t *testing.T) {
	uc, _, _ := setup(usecasetest.Reply(`{"tag_trending":"7","error":"partial"}`))

	result := uc.Trending(context.Background(), "beauty")
	assert.Equal(t, "beauty", result.Tag)
	assert.Empty(t, result.Products)
	assert.Equal(t, "partial", result.Error)
}

func TestTrendingPayloadHasNoUserAttribution(t *testing.T) {
	uc, engines, _ := setup(usecasetest.Reply(`{"global_trending":[]}`))

	uc.Trending(context.Background(), "")

	var sent map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(engines.Calls[0].Payload, &sent))
	require.Len(t, sent["transactions"], 1)
	assert.Equal(t, map[string]interface{}{"productIds": "1,2"}, sent["transactions"][0])
	assert.Len(t, sent["products"], 2)
}

func TestTrendingNeverRaisesOnEngineFailure(t *testing.T) {
	for _, tag := range []string{"", "beauty"} {
		uc, _, _ := setup(usecasetest.Crash())

		result := uc.Trending(context.Background(), tag)
		assert.Equal(t, tag == "", result.Global())
		assert.NotNil(t, result.Products)
		assert.Empty(t, result.Products)
		assert.Empty(t, result.Error)
	}
}

func TestTrendingSurvivesHistoryFailure(t *testing.T) {
	uc, engines, history := setup(usecasetest.Reply(`{"global_trending":["1"]}`))
	history.ReadErr = errors.New("timeout")

	result := uc.Trending(context.Background(), "all")
	require.Len(t, result.Products, 1)

	var sent map[string][]interface{}
	require.NoError(t, json.Unmarshal(engines.Calls[0].Payload, &sent))
	assert.Empty(t, sent["transactions"])
	assert.NotNil(t, sent["transactions"])
}
