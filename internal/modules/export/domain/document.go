package domain

import (
	"fmt"
	"strings"
	"time"

	catalogdomain "demoprep/internal/modules/catalog/domain"
	sessiondomain "demoprep/internal/modules/session/domain"
	apperrors "demoprep/internal/platform/errors"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", apperrors.ErrInvalidInput, raw)
}

func (f Format) Ext() string {
	if f == FormatJSON {
		return "json"
	}
	return "md"
}

// Document is everything one export renders. Exporters treat it as
// read-only.
type Document struct {
	Session     sessiondomain.Session
	Bundle      catalogdomain.Bundle
	AllItems    bool
	GeneratedAt time.Time
}

func WhyLabel(q sessiondomain.WhyQuestion) string {
	switch q {
	case sessiondomain.WhyChange:
		return "Why change"
	case sessiondomain.WhyNow:
		return "Why now"
	case sessiondomain.WhyThoughtSpot:
		return "Why ThoughtSpot"
	}
	return string(q)
}

func SubsectionLabel(s sessiondomain.Subsection) string {
	switch s {
	case sessiondomain.SubsectionCustomerContext:
		return "Customer Context"
	case sessiondomain.SubsectionStakeholders:
		return "Stakeholders"
	case sessiondomain.SubsectionTimeline:
		return "Timeline"
	case sessiondomain.SubsectionBusinessRequirements:
		return "Business Requirements"
	case sessiondomain.SubsectionTechnicalRequirements:
		return "Technical Requirements"
	}
	return string(s)
}

// NoteFor returns the trimmed note attached to a catalog item, if any.
func (d Document) NoteFor(itemID string) (string, bool) {
	note, ok := d.Session.Notes.Items[itemID]
	if !ok || strings.TrimSpace(note.Content) == "" {
		return "", false
	}
	return strings.TrimSpace(note.Content), true
}
