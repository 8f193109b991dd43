package in

import (
	"context"

	prepdto "demoprep/internal/modules/prep/dto"
	prepin "demoprep/internal/modules/prep/port/in"
)

type CLIHandler struct {
	usecase prepin.Usecase
}

func NewCLIHandler(usecase prepin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Generate(ctx context.Context, company string, profiles []string, extra string, onChunk func(string)) (prepdto.ResultOutput, error) {
	return h.usecase.Generate(ctx, prepdto.GenerateInput{
		CompanyName:       company,
		LinkedInProfiles:  profiles,
		AdditionalContext: extra,
	}, onChunk)
}
