package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "demoprep/internal/platform/errors"
)

// The functions in this file are the session mutation engine. Each returns a
// new Session and leaves its input untouched. None of them refresh UpdatedAt;
// that is the repository's job when the session is saved.

// MetadataPatch overlays the non-nil fields onto existing metadata.
type MetadataPatch struct {
	DemoDate   *time.Time
	DealStage  *string
	Industries []string
	UseCases   []string
}

func AddOrUpdateItemNote(s Session, itemID, content string, now time.Time) Session {
	out := s.Clone()
	content = strings.TrimSpace(content)
	note, ok := out.Notes.Items[itemID]
	if !ok {
		note = ItemNote{Timestamp: now}
	}
	note.Content = content
	note.LastModified = now
	out.Notes.Items[itemID] = note
	return out
}

func RemoveItemNote(s Session, itemID string) Session {
	out := s.Clone()
	delete(out.Notes.Items, itemID)
	return out
}

func UpdateGeneralNotes(s Session, content string) Session {
	out := s.Clone()
	out.Notes.General = content
	return out
}

func ToggleSelection(s Session, category Category, itemID string) (Session, error) {
	if err := category.Validate(); err != nil {
		return s, err
	}
	if strings.TrimSpace(itemID) == "" {
		return s, fmt.Errorf("%w: item id is required", apperrors.ErrInvalidInput)
	}
	out := s.Clone()
	ids := out.SelectedItems[category]
	idx, found := slices.BinarySearch(ids, itemID)
	if found {
		ids = slices.Delete(ids, idx, idx+1)
	} else {
		ids = slices.Insert(ids, idx, itemID)
	}
	out.SelectedItems[category] = ids
	return out, nil
}

func IsSelected(s Session, category Category, itemID string) bool {
	_, found := slices.BinarySearch(s.SelectedItems[category], itemID)
	return found
}

func UpdateMetadata(s Session, patch MetadataPatch) Session {
	out := s.Clone()
	if patch.DemoDate != nil {
		out.Metadata.DemoDate = *patch.DemoDate
	}
	if patch.DealStage != nil {
		out.Metadata.DealStage = strings.TrimSpace(*patch.DealStage)
	}
	if patch.Industries != nil {
		out.Metadata.Industries = dedupe(patch.Industries)
	}
	if patch.UseCases != nil {
		out.Metadata.UseCases = dedupe(patch.UseCases)
	}
	return out
}

func SetWhyAnswer(s Session, question WhyQuestion, answer string) (Session, error) {
	if err := question.Validate(); err != nil {
		return s, err
	}
	out := s.Clone()
	out.ThreeWhys[question] = answer
	return out, nil
}

func sortedSet(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
