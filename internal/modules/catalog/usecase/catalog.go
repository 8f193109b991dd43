package usecase

import (
	"context"
	"fmt"

	"demoprep/internal/modules/catalog/domain"
	"demoprep/internal/modules/catalog/dto"
	catalogin "demoprep/internal/modules/catalog/port/in"
	catalogout "demoprep/internal/modules/catalog/port/out"
	apperrors "demoprep/internal/platform/errors"
)

type Interactor struct {
	source catalogout.Source
}

func NewInteractor(source catalogout.Source) catalogin.Usecase {
	return &Interactor{source: source}
}

func (i *Interactor) Catalog(ctx context.Context) (dto.CatalogOutput, error) {
	catalog, err := i.source.Load(ctx)
	if err != nil {
		return dto.CatalogOutput{}, err
	}
	return dto.CatalogOutput{Catalog: catalog, Industries: catalog.Industries()}, nil
}

func (i *Interactor) Search(ctx context.Context, input dto.SearchInput) ([]dto.ItemOutput, error) {
	catalog, err := i.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	items, err := catalog.Search(input.Category, input.Query, input.Industry)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemOutput, 0, len(items))
	for _, item := range items {
		out = append(out, toItemOutput(item))
	}
	return out, nil
}

func (i *Interactor) Item(ctx context.Context, id string) (dto.ItemOutput, error) {
	catalog, err := i.source.Load(ctx)
	if err != nil {
		return dto.ItemOutput{}, err
	}
	item, ok := catalog.Find(id)
	if !ok {
		return dto.ItemOutput{}, fmt.Errorf("%w: catalog item %s", apperrors.ErrNotFound, id)
	}
	return toItemOutput(item), nil
}

func (i *Interactor) Resolve(ctx context.Context, input dto.ResolveInput) (dto.BundleOutput, error) {
	catalog, err := i.source.Load(ctx)
	if err != nil {
		return dto.BundleOutput{}, err
	}
	sel := domain.Selection{
		Discovery:       input.Selected[domain.CategoryDiscovery],
		UseCases:        input.Selected[domain.CategoryUseCases],
		Differentiators: input.Selected[domain.CategoryDifferentiators],
		Objections:      input.Selected[domain.CategoryObjections],
	}
	return dto.BundleOutput{Bundle: catalog.Resolve(sel), All: sel.Empty()}, nil
}

func toItemOutput(item domain.Item) dto.ItemOutput {
	return dto.ItemOutput{ID: item.ID, Category: item.Category, Title: item.Title, Group: item.Group, Detail: item.Detail}
}
