package in

import (
	"context"

	"demoprep/internal/modules/session/dto"
)

type Usecase interface {
	Init(ctx context.Context) error
	CreateSession(ctx context.Context, input dto.CreateInput) (dto.SessionOutput, error)
	LoadSession(ctx context.Context, id string) (dto.SessionOutput, error)
	DeleteSession(ctx context.Context, id string) (dto.DeleteOutput, error)
	SaveCurrentSession(ctx context.Context) error
	Current(ctx context.Context) (dto.SessionOutput, error)
	ListSessions(ctx context.Context) ([]dto.SummaryOutput, error)
	Usage(ctx context.Context) dto.UsageOutput
	Reset(ctx context.Context) error

	UpdateSessionMetadata(ctx context.Context, input dto.MetadataInput) (dto.SessionOutput, error)
	SetItemNote(ctx context.Context, input dto.ItemNoteInput) error
	RemoveItemNote(ctx context.Context, itemID string) error
	UpdateGeneralNotes(ctx context.Context, content string) error
	ToggleSelection(ctx context.Context, input dto.SelectionInput) (dto.SelectionOutput, error)
	IsSelected(ctx context.Context, input dto.SelectionInput) (bool, error)
	SetWhyAnswer(ctx context.Context, input dto.WhyInput) error
	UpdateUseCaseDoc(ctx context.Context, input dto.DocPatchInput) error
	UseCaseDoc(ctx context.Context, useCaseID string) (dto.UseCaseDocOutput, error)

	Close(ctx context.Context) error
}
