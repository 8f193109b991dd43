package domain

import (
	"fmt"
	"time"

	apperrors "demoprep/internal/platform/errors"
)

type Subsection string

const (
	SubsectionCustomerContext       Subsection = "customerContext"
	SubsectionStakeholders          Subsection = "stakeholders"
	SubsectionTimeline              Subsection = "timeline"
	SubsectionBusinessRequirements  Subsection = "businessRequirements"
	SubsectionTechnicalRequirements Subsection = "technicalRequirements"
)

var Subsections = []Subsection{
	SubsectionCustomerContext,
	SubsectionStakeholders,
	SubsectionTimeline,
	SubsectionBusinessRequirements,
	SubsectionTechnicalRequirements,
}

func (s Subsection) Validate() error {
	switch s {
	case SubsectionCustomerContext, SubsectionStakeholders, SubsectionTimeline, SubsectionBusinessRequirements, SubsectionTechnicalRequirements:
		return nil
	default:
		return fmt.Errorf("%w: unknown subsection %q", apperrors.ErrInvalidSession, string(s))
	}
}

// Fields holds the free-form values of one documentation subsection
// (strings, numbers, lists, or nested objects such as a primary contact).
type Fields map[string]any

type DocNotes struct {
	Content           string     `json:"content"`
	QuickCaptureItems []string   `json:"quickCaptureItems"`
	LastModified      *time.Time `json:"lastModified"`
}

type UseCaseDoc struct {
	Structured map[Subsection]Fields `json:"structured"`
	Notes      DocNotes              `json:"notes"`
}

// DocPatch is a partial documentation update. Only subsections and fields
// present in Structured are written; a nil field value counts as absent.
// A non-nil Notes replaces the doc notes wholesale.
type DocPatch struct {
	Structured map[Subsection]Fields `json:"structured,omitempty"`
	Notes      *DocNotes             `json:"notes,omitempty"`
}

// NewUseCaseDoc is the lazily created doc: every subsection present and empty.
func NewUseCaseDoc() UseCaseDoc {
	return UseCaseDoc{}.normalized()
}

func (d UseCaseDoc) normalized() UseCaseDoc {
	if d.Structured == nil {
		d.Structured = map[Subsection]Fields{}
	}
	for _, sub := range Subsections {
		if d.Structured[sub] == nil {
			d.Structured[sub] = Fields{}
		}
	}
	if d.Notes.QuickCaptureItems == nil {
		d.Notes.QuickCaptureItems = []string{}
	}
	return d
}

func (d UseCaseDoc) Clone() UseCaseDoc {
	out := UseCaseDoc{
		Structured: make(map[Subsection]Fields, len(d.Structured)),
		Notes:      d.Notes.Clone(),
	}
	for sub, fields := range d.Structured {
		out.Structured[sub] = fields.Clone()
	}
	return out
}

func (n DocNotes) Clone() DocNotes {
	out := n
	if n.QuickCaptureItems != nil {
		out.QuickCaptureItems = append([]string{}, n.QuickCaptureItems...)
	}
	if n.LastModified != nil {
		ts := *n.LastModified
		out.LastModified = &ts
	}
	return out
}

func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			out[k] = cloneValue(inner)
		}
		return out
	case Fields:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, inner := range typed {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		return append([]string{}, typed...)
	default:
		return v
	}
}
