package usecase

import (
	"context"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/internal/engine"
)

// CatalogReader serves the current catalog snapshot. Get never returns nil.
type CatalogReader interface {
	Get(ctx context.Context) *domain.Snapshot
}

// EngineInvoker runs a named scoring engine.
type EngineInvoker interface {
	Invoke(ctx context.Context, name string, args []string, payload []byte) (engine.Document, error)
}

// Engine names.
const (
	EngineRecommend      = "recommend"
	EngineTrending       = "trending"
	EngineSearch         = "search"
	EngineBoughtTogether = "bought_together"
	EngineFavorites      = "fav_category"
)
