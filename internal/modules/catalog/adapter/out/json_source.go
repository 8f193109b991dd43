package out

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"demoprep/internal/modules/catalog/domain"
	catalogout "demoprep/internal/modules/catalog/port/out"
	apperrors "demoprep/internal/platform/errors"
)

const (
	DiscoveryFile       = "discovery.json"
	UseCasesFile        = "usecases.json"
	DifferentiatorsFile = "differentiators.json"
	ObjectionsFile      = "objections.json"
)

//go:embed sample/*.json
var sampleFS embed.FS

// JSONSource reads the four catalog files from a filesystem and caches the
// result after the first successful load.
type JSONSource struct {
	fsys fs.FS

	mu      sync.Mutex
	loaded  bool
	catalog domain.Catalog
}

// NewDirSource reads catalog files from dir.
func NewDirSource(dir string) (catalogout.Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog dir %s: %v", apperrors.ErrInvalidInput, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: catalog path %s is not a directory", apperrors.ErrInvalidInput, dir)
	}
	return &JSONSource{fsys: os.DirFS(dir)}, nil
}

// NewSampleSource serves the catalog bundled with the binary.
func NewSampleSource() catalogout.Source {
	sub, err := fs.Sub(sampleFS, "sample")
	if err != nil {
		panic(err)
	}
	return &JSONSource{fsys: sub}
}

func NewFSSource(fsys fs.FS) catalogout.Source {
	return &JSONSource{fsys: fsys}
}

func (s *JSONSource) Load(ctx context.Context) (domain.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.catalog, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Catalog{}, err
	}

	var (
		discovery struct {
			Questions []domain.Question `json:"questions"`
		}
		useCases struct {
			UseCases []domain.UseCase `json:"useCases"`
		}
		differentiators struct {
			Competitors map[string]domain.Competitor `json:"competitors"`
		}
		objections struct {
			Objections []domain.Objection `json:"objections"`
		}
	)
	for _, f := range []struct {
		name string
		into any
	}{
		{DiscoveryFile, &discovery},
		{UseCasesFile, &useCases},
		{DifferentiatorsFile, &differentiators},
		{ObjectionsFile, &objections},
	} {
		if err := s.decode(f.name, f.into); err != nil {
			return domain.Catalog{}, err
		}
	}

	catalog := domain.Catalog{
		Questions:   discovery.Questions,
		UseCases:    useCases.UseCases,
		Competitors: differentiators.Competitors,
		Objections:  objections.Objections,
	}
	if catalog.Competitors == nil {
		catalog.Competitors = map[string]domain.Competitor{}
	}
	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, err
	}
	s.catalog = catalog
	s.loaded = true
	return catalog, nil
}

// decode treats a missing file as an empty category.
func (s *JSONSource) decode(name string, into any) error {
	raw, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("%w: decode %s: %v", apperrors.ErrInvalidInput, name, err)
	}
	return nil
}
