package in

import (
	"context"

	"demoprep/internal/modules/catalog/dto"
)

type Usecase interface {
	Catalog(ctx context.Context) (dto.CatalogOutput, error)
	Search(ctx context.Context, input dto.SearchInput) ([]dto.ItemOutput, error)
	Item(ctx context.Context, id string) (dto.ItemOutput, error)
	Resolve(ctx context.Context, input dto.ResolveInput) (dto.BundleOutput, error)
}
