package dto

import (
	"time"

	"demoprep/internal/modules/session/domain"
)

type CreateInput struct {
	Name       string
	DemoDate   time.Time
	DealStage  string
	Industries []string
	UseCases   []string
}

type MetadataInput struct {
	DemoDate   *time.Time
	DealStage  *string
	Industries []string
	UseCases   []string
}

type ItemNoteInput struct {
	ItemID  string
	Content string
}

type SelectionInput struct {
	Category string
	ItemID   string
}

type WhyInput struct {
	Question string
	Answer   string
}

type DocNotesInput struct {
	Content           string
	QuickCaptureItems []string
}

// DocPatchInput is a partial use case documentation update keyed by the
// wire names of subsections and fields.
type DocPatchInput struct {
	UseCaseID  string
	Structured map[string]map[string]any
	Notes      *DocNotesInput
}

type SessionOutput struct {
	Session domain.Session
}

type SummaryOutput struct {
	ID              string
	Name            string
	DealStage       string
	DemoDate        time.Time
	NoteCount       int
	SelectedCount   int
	HasGeneralNotes bool
	UpdatedAt       time.Time
	Current         bool
}

type DeleteOutput struct {
	Deleted   bool
	CurrentID string
}

type UsageOutput struct {
	Available  bool
	MemoryOnly bool
	Ratio      float64
	Warning    bool
}

type SelectionOutput struct {
	Category string
	ItemID   string
	Selected bool
}

type UseCaseDocOutput struct {
	UseCaseID string
	Exists    bool
	Doc       domain.UseCaseDoc
}
