package domain

import "time"

// Summary is the list-view projection of a session.
type Summary struct {
	ID              string
	Name            string
	DealStage       string
	DemoDate        time.Time
	NoteCount       int
	SelectedCount   int
	HasGeneralNotes bool
	UpdatedAt       time.Time
}

func (s Session) Summary() Summary {
	return Summary{
		ID:              s.ID,
		Name:            s.Name,
		DealStage:       s.Metadata.DealStage,
		DemoDate:        s.Metadata.DemoDate,
		NoteCount:       len(s.Notes.Items),
		SelectedCount:   s.SelectedCount(),
		HasGeneralNotes: s.HasGeneralNotes(),
		UpdatedAt:       s.UpdatedAt,
	}
}
