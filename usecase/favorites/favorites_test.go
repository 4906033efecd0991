package favorites

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
	"github.com/fastygo/storecore/usecase"
	"github.com/fastygo/storecore/usecase/usecasetest"
)

func setup(fn engine.Func) (*UseCase, *usecasetest.Engines) {
	catalog := usecasetest.NewCatalog(usecasetest.Product(1, "Mascara"))
	users := usecasetest.NewUsers(domain.User{UserID: "u-1", Email: "ada@example.com"})
	history := &usecasetest.Transactions{Items: []domain.Transaction{
		{UserID: "u-1", Products: []domain.ProductID{1}},
		{UserID: "u-2", Products: []domain.ProductID{1}},
	}}
	engines := usecasetest.NewEngines(map[string]engine.Func{usecase.EngineFavorites: fn})
	return New(catalog, users, history, engines, nil), engines
}

func TestFavoritesOnlySendsUsersPurchases(t *testing.T) {
	uc, engines := setup(usecasetest.Reply(`{"favorite_categories":["beauty","groceries"]}`))

	cats, err := uc.Favorites(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"beauty", "groceries"}, cats)

	var sent payload
	require.NoError(t, json.Unmarshal(engines.Calls[0].Payload, &sent))
	require.Len(t, sent.Transactions, 1)
	assert.Equal(t, "u-1", sent.Transactions[0].UserID)
	assert.Equal(t, []string{"u-1"}, engines.Calls[0].Args)
}

func TestFavoritesUnknownUser(t *testing.T) {
	uc, engines := setup(usecasetest.Reply(`{}`))

	_, err := uc.Favorites(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Zero(t, engines.Count(usecase.EngineFavorites))
}

func TestFavoritesDegradesToEmpty(t *testing.T) {
	for _, eng := range []engine.Func{usecasetest.Crash(), usecasetest.Reply(`{}`), usecasetest.Reply(`{"favorite_categories":3}`)} {
		uc, _ := setup(eng)

		cats, err := uc.Favorites(context.Background(), "u-1")
		require.NoError(t, err)
		assert.Equal(t, []string{}, cats)
	}
}
