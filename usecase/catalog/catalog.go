package catalog

import (
	"context"
	"strings"

	"github.com/fastygo/storecore/domain"
	"github.com/fastygo/storecore/usecase"
)

// UseCase answers plain catalog questions from the cached snapshot.
type UseCase struct {
	catalog usecase.CatalogReader
}

func New(catalog usecase.CatalogReader) *UseCase {
	return &UseCase{catalog: catalog}
}

// ProductIDs lists every cached id in catalog order.
func (uc *UseCase) ProductIDs(ctx context.Context) []domain.ProductID {
	return uc.catalog.Get(ctx).IDs()
}

// Lookup returns the products with the given ids in catalog order; unknown
// ids are ignored.
func (uc *UseCase) Lookup(ctx context.Context, ids []domain.ProductID) []domain.Product {
	return uc.catalog.Get(ctx).Filter(ids)
}

// LookupList parses a comma separated id list and looks it up.
func (uc *UseCase) LookupList(ctx context.Context, list string) ([]domain.Product, error) {
	if strings.TrimSpace(list) == "" {
		return nil, domain.Invalid("ids query parameter is required")
	}
	ids, err := domain.ParseProductIDList(list)
	if err != nil {
		return nil, err
	}
	return uc.Lookup(ctx, ids), nil
}
