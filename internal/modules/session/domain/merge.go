package domain

import (
	"fmt"
	"strings"

	apperrors "demoprep/internal/platform/errors"
)

// MergeUseCaseDoc applies a partial documentation update two levels deep.
// Every subsection keeps its existing fields; fields present in the patch
// overwrite, nil patch values are skipped, and subsections the patch does
// not name are left as they were. Independent editors writing different
// subsections therefore never erase each other's work.
func MergeUseCaseDoc(s Session, useCaseID string, patch DocPatch) (Session, error) {
	if strings.TrimSpace(useCaseID) == "" {
		return s, fmt.Errorf("%w: use case id is required", apperrors.ErrInvalidInput)
	}
	for sub := range patch.Structured {
		if err := sub.Validate(); err != nil {
			return s, err
		}
	}

	out := s.Clone()
	doc, ok := out.UseCaseDocumentation[useCaseID]
	if !ok {
		doc = NewUseCaseDoc()
	}
	for sub, incoming := range patch.Structured {
		merged := doc.Structured[sub]
		if merged == nil {
			merged = Fields{}
		}
		for field, value := range incoming {
			if value == nil {
				continue
			}
			merged[field] = cloneValue(value)
		}
		doc.Structured[sub] = merged
	}
	if patch.Notes != nil {
		doc.Notes = patch.Notes.Clone()
	}
	out.UseCaseDocumentation[useCaseID] = doc.normalized()
	return out, nil
}
