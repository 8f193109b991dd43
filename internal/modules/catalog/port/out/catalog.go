package out

import (
	"context"

	"demoprep/internal/modules/catalog/domain"
)

// Source supplies the reference content. Implementations never mutate it.
type Source interface {
	Load(ctx context.Context) (domain.Catalog, error)
}
