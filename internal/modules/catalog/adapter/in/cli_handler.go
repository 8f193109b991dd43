package in

import (
	"context"

	catalogdto "demoprep/internal/modules/catalog/dto"
	catalogin "demoprep/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, category, query, industry string) ([]catalogdto.ItemOutput, error) {
	return h.usecase.Search(ctx, catalogdto.SearchInput{Category: category, Query: query, Industry: industry})
}

func (h CLIHandler) Item(ctx context.Context, id string) (catalogdto.ItemOutput, error) {
	return h.usecase.Item(ctx, id)
}

func (h CLIHandler) Industries(ctx context.Context) ([]string, error) {
	out, err := h.usecase.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return out.Industries, nil
}
