package in

import (
	"context"

	exportdto "demoprep/internal/modules/export/dto"
	exportin "demoprep/internal/modules/export/port/in"
)

type CLIHandler struct {
	usecase exportin.Usecase
}

func NewCLIHandler(usecase exportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Export(ctx context.Context, format, path, dir string) (exportdto.ExportOutput, error) {
	return h.usecase.Export(ctx, exportdto.ExportInput{Format: format, Path: path, Dir: dir})
}
