package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	catalogin "demoprep/internal/modules/catalog/port/in"
	"demoprep/internal/modules/prep/domain"
	"demoprep/internal/modules/prep/dto"
	prepin "demoprep/internal/modules/prep/port/in"
	prepout "demoprep/internal/modules/prep/port/out"
)

type Interactor struct {
	catalog  catalogin.Usecase
	streamer prepout.Streamer
	log      *zap.Logger
}

func NewInteractor(catalog catalogin.Usecase, streamer prepout.Streamer, log *zap.Logger) prepin.Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Interactor{catalog: catalog, streamer: streamer, log: log.Named("prep")}
}

func (i *Interactor) Generate(ctx context.Context, input dto.GenerateInput, onChunk func(string)) (dto.ResultOutput, error) {
	inputs := domain.Inputs{
		CompanyName:       input.CompanyName,
		LinkedInProfiles:  input.LinkedInProfiles,
		AdditionalContext: input.AdditionalContext,
	}
	if err := inputs.Validate(); err != nil {
		return dto.ResultOutput{}, err
	}
	catalog, err := i.catalog.Catalog(ctx)
	if err != nil {
		return dto.ResultOutput{}, err
	}
	system, err := domain.SystemPrompt(catalog.Catalog)
	if err != nil {
		return dto.ResultOutput{}, err
	}

	var text strings.Builder
	err = i.streamer.Stream(ctx, system, domain.UserPrompt(inputs), func(chunk string) {
		text.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	})
	result := domain.Result{Text: text.String(), Sections: domain.ParseSections(text.String())}
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result.Interrupted = true
		i.log.Info("generation interrupted", zap.String("company", inputs.CompanyName), zap.Int("chars", text.Len()))
		return dto.ResultOutput{Result: result}, nil
	default:
		i.log.Warn("generation failed", zap.String("company", inputs.CompanyName), zap.Error(err))
		return dto.ResultOutput{Result: result}, err
	}
	if !result.HasContent() {
		i.log.Warn("response had no recognised sections", zap.Int("chars", text.Len()))
	}
	return dto.ResultOutput{Result: result}, nil
}
