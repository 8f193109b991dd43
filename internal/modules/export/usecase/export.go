package usecase

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	catalogdto "demoprep/internal/modules/catalog/dto"
	catalogin "demoprep/internal/modules/catalog/port/in"
	"demoprep/internal/modules/export/domain"
	"demoprep/internal/modules/export/dto"
	exportin "demoprep/internal/modules/export/port/in"
	exportout "demoprep/internal/modules/export/port/out"
	sessionin "demoprep/internal/modules/session/port/in"
	"demoprep/internal/platform/clock"
	apperrors "demoprep/internal/platform/errors"
	"demoprep/internal/platform/slug"
)

type Interactor struct {
	sessions  sessionin.Usecase
	catalog   catalogin.Usecase
	exporters map[domain.Format]exportout.Exporter
	files     exportout.FileStore
	clock     clock.Clock
	log       *zap.Logger
}

func NewInteractor(sessions sessionin.Usecase, catalog catalogin.Usecase, files exportout.FileStore, clk clock.Clock, log *zap.Logger, exporters ...exportout.Exporter) exportin.Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	byFormat := make(map[domain.Format]exportout.Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Format()] = e
	}
	return &Interactor{sessions: sessions, catalog: catalog, exporters: byFormat, files: files, clock: clk, log: log.Named("export")}
}

// Export renders the current session. It only reads session state.
func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	format, err := domain.ParseFormat(input.Format)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	exporter, ok := i.exporters[format]
	if !ok {
		return dto.ExportOutput{}, fmt.Errorf("%w: no exporter for %s", apperrors.ErrInvalidInput, format)
	}

	current, err := i.sessions.Current(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	session := current.Session

	selected := make(map[string][]string, len(session.SelectedItems))
	for category, ids := range session.SelectedItems {
		selected[string(category)] = ids
	}
	bundle, err := i.catalog.Resolve(ctx, catalogdto.ResolveInput{Selected: selected})
	if err != nil {
		return dto.ExportOutput{}, err
	}
	doc := domain.Document{
		Session:     session,
		Bundle:      bundle.Bundle,
		AllItems:    bundle.All,
		GeneratedAt: i.clock.Now(),
	}

	out := dto.ExportOutput{Format: string(format), ItemCount: bundle.Bundle.Total(), AllItems: bundle.All}
	path := input.Path
	if path == "" && input.Dir != "" {
		path = filepath.Join(input.Dir, slug.FileName(session.Name, format.Ext()))
	}

	var existing []byte
	var found bool
	if path != "" {
		if existing, found, err = i.files.Read(path); err != nil {
			return dto.ExportOutput{}, err
		}
	}
	updater, canUpdate := exporter.(exportout.Updater)
	if found && canUpdate {
		out.Data, err = updater.Update(ctx, existing, doc)
		out.Updated = true
	} else {
		out.Data, err = exporter.Export(ctx, doc)
	}
	if err != nil {
		return dto.ExportOutput{}, err
	}

	if path != "" {
		if err := i.files.Write(path, out.Data); err != nil {
			return dto.ExportOutput{}, err
		}
		out.Path = path
		i.log.Info("session exported",
			zap.String("session", session.ID),
			zap.String("format", string(format)),
			zap.String("path", path),
			zap.Int("items", out.ItemCount),
			zap.Bool("updated", out.Updated),
		)
	}
	return out, nil
}
