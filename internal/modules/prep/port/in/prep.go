package in

import (
	"context"

	"demoprep/internal/modules/prep/dto"
)

type Usecase interface {
	// Generate streams a brief, calling onChunk for every text delta. A
	// cancelled ctx yields the partial result marked interrupted and no error.
	Generate(ctx context.Context, input dto.GenerateInput, onChunk func(string)) (dto.ResultOutput, error)
}
