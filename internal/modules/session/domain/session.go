package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "demoprep/internal/platform/errors"
)

const (
	AppVersion       = "1.1.0"
	MaxNameLength    = 100
	DefaultName      = "New Session"
	DefaultDealStage = "Discovery"
)

type Category string

const (
	CategoryDiscovery       Category = "discovery"
	CategoryUseCases        Category = "usecases"
	CategoryDifferentiators Category = "differentiators"
	CategoryObjections      Category = "objections"
)

// Categories lists the selection categories in display order.
var Categories = []Category{CategoryDiscovery, CategoryUseCases, CategoryDifferentiators, CategoryObjections}

func (c Category) Validate() error {
	switch c {
	case CategoryDiscovery, CategoryUseCases, CategoryDifferentiators, CategoryObjections:
		return nil
	default:
		return fmt.Errorf("%w: unknown category %q", apperrors.ErrInvalidSession, string(c))
	}
}

type WhyQuestion string

const (
	WhyChange      WhyQuestion = "why-change"
	WhyNow         WhyQuestion = "why-now"
	WhyThoughtSpot WhyQuestion = "why-thoughtspot"
)

var WhyQuestions = []WhyQuestion{WhyChange, WhyNow, WhyThoughtSpot}

func (q WhyQuestion) Validate() error {
	switch q {
	case WhyChange, WhyNow, WhyThoughtSpot:
		return nil
	default:
		return fmt.Errorf("%w: unknown why question %q", apperrors.ErrInvalidSession, string(q))
	}
}

type Metadata struct {
	DemoDate   time.Time `json:"demoDate"`
	DealStage  string    `json:"dealStage"`
	Industries []string  `json:"industries"`
	UseCases   []string  `json:"useCases"`
}

type ItemNote struct {
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	LastModified time.Time `json:"lastModified"`
}

type Notes struct {
	Items   map[string]ItemNote `json:"items"`
	General string              `json:"general"`
}

type Session struct {
	ID                   string                 `json:"id"`
	Name                 string                 `json:"name"`
	Metadata             Metadata               `json:"metadata"`
	Notes                Notes                  `json:"notes"`
	SelectedItems        map[Category][]string  `json:"selectedItems"`
	ThreeWhys            map[WhyQuestion]string `json:"threeWhys"`
	UseCaseDocumentation map[string]UseCaseDoc  `json:"useCaseDocumentation"`
	CreatedAt            time.Time              `json:"createdAt"`
	UpdatedAt            time.Time              `json:"updatedAt"`
}

// MetadataOverrides carries the optional fields accepted at creation time.
// Zero values fall back to defaults.
type MetadataOverrides struct {
	DemoDate   time.Time
	DealStage  string
	Industries []string
	UseCases   []string
}

// New builds an empty session. It does not validate the name; blank names
// fall back to DefaultName.
func New(id, name string, overrides MetadataOverrides, now time.Time) Session {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	demoDate := overrides.DemoDate
	if demoDate.IsZero() {
		demoDate = now
	}
	dealStage := strings.TrimSpace(overrides.DealStage)
	if dealStage == "" {
		dealStage = DefaultDealStage
	}
	s := Session{
		ID:   id,
		Name: name,
		Metadata: Metadata{
			DemoDate:   demoDate,
			DealStage:  dealStage,
			Industries: dedupe(overrides.Industries),
			UseCases:   dedupe(overrides.UseCases),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.normalize()
	return s
}

// ValidateName returns nil for a usable session name, otherwise an
// ErrValidation-wrapped error whose message is fit for display.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: session name is required", apperrors.ErrValidation)
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return fmt.Errorf("%w: session name must be %d characters or less", apperrors.ErrValidation, MaxNameLength)
	}
	return nil
}

// Validate checks the structural invariants a saved session must hold.
func (s Session) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: id is required", apperrors.ErrInvalidSession)
	}
	if !s.CreatedAt.IsZero() && s.UpdatedAt.Before(s.CreatedAt) {
		return fmt.Errorf("%w: updatedAt before createdAt", apperrors.ErrInvalidSession)
	}
	for cat, ids := range s.SelectedItems {
		seen := make(map[string]struct{}, len(ids))
		for _, itemID := range ids {
			if _, ok := seen[itemID]; ok {
				return fmt.Errorf("%w: duplicate %q in %s", apperrors.ErrInvalidSession, itemID, cat)
			}
			seen[itemID] = struct{}{}
		}
	}
	return s.validateKeys()
}

func (s Session) validateKeys() error {
	for cat := range s.SelectedItems {
		if err := cat.Validate(); err != nil {
			return err
		}
	}
	for q := range s.ThreeWhys {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	for useCaseID, doc := range s.UseCaseDocumentation {
		for sub := range doc.Structured {
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("use case %s: %w", useCaseID, err)
			}
		}
	}
	return nil
}

// UnmarshalJSON rejects unknown category, question, and subsection keys and
// fills any missing collections so decoded sessions match New's shape.
func (s *Session) UnmarshalJSON(data []byte) error {
	type plain Session
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	out := Session(decoded)
	if err := out.validateKeys(); err != nil {
		return err
	}
	out.normalize()
	*s = out
	return nil
}

func (s *Session) normalize() {
	if s.Notes.Items == nil {
		s.Notes.Items = map[string]ItemNote{}
	}
	if s.Metadata.Industries == nil {
		s.Metadata.Industries = []string{}
	}
	if s.Metadata.UseCases == nil {
		s.Metadata.UseCases = []string{}
	}
	if s.SelectedItems == nil {
		s.SelectedItems = map[Category][]string{}
	}
	for _, cat := range Categories {
		ids := s.SelectedItems[cat]
		if ids == nil {
			ids = []string{}
		}
		s.SelectedItems[cat] = sortedSet(ids)
	}
	if s.ThreeWhys == nil {
		s.ThreeWhys = map[WhyQuestion]string{}
	}
	for _, q := range WhyQuestions {
		if _, ok := s.ThreeWhys[q]; !ok {
			s.ThreeWhys[q] = ""
		}
	}
	if s.UseCaseDocumentation == nil {
		s.UseCaseDocumentation = map[string]UseCaseDoc{}
	}
	for useCaseID, doc := range s.UseCaseDocumentation {
		s.UseCaseDocumentation[useCaseID] = doc.normalized()
	}
}

// Clone returns a deep copy; mutations never share maps or slices with their input.
func (s Session) Clone() Session {
	out := s
	out.Metadata.Industries = append([]string{}, s.Metadata.Industries...)
	out.Metadata.UseCases = append([]string{}, s.Metadata.UseCases...)
	out.Notes.Items = make(map[string]ItemNote, len(s.Notes.Items))
	for k, v := range s.Notes.Items {
		out.Notes.Items[k] = v
	}
	out.SelectedItems = make(map[Category][]string, len(s.SelectedItems))
	for k, v := range s.SelectedItems {
		out.SelectedItems[k] = append([]string{}, v...)
	}
	out.ThreeWhys = make(map[WhyQuestion]string, len(s.ThreeWhys))
	for k, v := range s.ThreeWhys {
		out.ThreeWhys[k] = v
	}
	out.UseCaseDocumentation = make(map[string]UseCaseDoc, len(s.UseCaseDocumentation))
	for k, v := range s.UseCaseDocumentation {
		out.UseCaseDocumentation[k] = v.Clone()
	}
	return out
}

// SelectedCount is the number of selected items across all categories.
func (s Session) SelectedCount() int {
	total := 0
	for _, ids := range s.SelectedItems {
		total += len(ids)
	}
	return total
}

func (s Session) HasSelections() bool {
	return s.SelectedCount() > 0
}

func (s Session) HasGeneralNotes() bool {
	return strings.TrimSpace(s.Notes.General) != ""
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
