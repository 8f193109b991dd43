package out

import (
	"context"

	"demoprep/internal/modules/export/domain"
)

type Exporter interface {
	Format() domain.Format
	Export(ctx context.Context, doc domain.Document) ([]byte, error)
}

// Updater is implemented by exporters that can refresh a previous export in
// place, keeping whatever the user added around the generated part.
type Updater interface {
	Update(ctx context.Context, existing []byte, doc domain.Document) ([]byte, error)
}

type FileStore interface {
	Read(path string) ([]byte, bool, error)
	Write(path string, data []byte) error
}
