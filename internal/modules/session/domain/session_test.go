package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "demoprep/internal/platform/errors"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestValidateNameBoundaries(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "empty", input: "", ok: false},
		{name: "blank", input: " ", ok: false},
		{name: "tabs and spaces", input: "\t  \n", ok: false},
		{name: "exactly max", input: strings.Repeat("a", 100), ok: true},
		{name: "one over max", input: strings.Repeat("a", 101), ok: false},
		{name: "padded max", input: "  " + strings.Repeat("a", 100) + "  ", ok: true},
		{name: "multibyte at max", input: strings.Repeat("é", 100), ok: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateName(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("expected %q to be valid, got %v", tc.input, err)
			}
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected %q to be rejected", tc.input)
				}
				if !errors.Is(err, apperrors.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
			}
		})
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()
	s := New("sess-1", "   ", MetadataOverrides{Industries: []string{"retail", "retail", " "}}, t0)
	if s.Name != DefaultName {
		t.Fatalf("expected default name, got %q", s.Name)
	}
	if s.Metadata.DealStage != DefaultDealStage || !s.Metadata.DemoDate.Equal(t0) {
		t.Fatalf("unexpected metadata defaults: %+v", s.Metadata)
	}
	if len(s.Metadata.Industries) != 1 || s.Metadata.Industries[0] != "retail" {
		t.Fatalf("expected deduped industries, got %v", s.Metadata.Industries)
	}
	for _, cat := range Categories {
		ids, ok := s.SelectedItems[cat]
		if !ok || ids == nil || len(ids) != 0 {
			t.Fatalf("expected empty selection for %s, got %v", cat, ids)
		}
	}
	if len(s.ThreeWhys) != 3 {
		t.Fatalf("expected the three why questions, got %v", s.ThreeWhys)
	}
	if !s.CreatedAt.Equal(s.UpdatedAt) {
		t.Fatalf("createdAt and updatedAt should start equal")
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("new session should validate: %v", err)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	payloads := map[string]string{
		"category":   `{"id":"a","selectedItems":{"pricing":["x"]}}`,
		"why":        `{"id":"a","threeWhys":{"why-not":"x"}}`,
		"subsection": `{"id":"a","useCaseDocumentation":{"uc-1":{"structured":{"budget":{}}}}}`,
	}
	for name, payload := range payloads {
		var s Session
		err := json.Unmarshal([]byte(payload), &s)
		if !errors.Is(err, apperrors.ErrInvalidSession) {
			t.Fatalf("%s: expected invalid session error, got %v", name, err)
		}
	}
}

func TestDecodeNormalizesSparseRecord(t *testing.T) {
	t.Parallel()
	var s Session
	payload := `{"id":"a","name":"Acme","selectedItems":{"discovery":["q-2","q-1","q-2"]},"useCaseDocumentation":{"uc-1":{}}}`
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := s.SelectedItems[CategoryDiscovery]; len(got) != 2 || got[0] != "q-1" || got[1] != "q-2" {
		t.Fatalf("expected sorted deduped selection, got %v", got)
	}
	if s.Notes.Items == nil || s.SelectedItems[CategoryObjections] == nil {
		t.Fatalf("expected collections to be filled")
	}
	doc := s.UseCaseDocumentation["uc-1"]
	if len(doc.Structured) != len(Subsections) {
		t.Fatalf("expected all subsections on decoded doc, got %v", doc.Structured)
	}
}

func TestValidateRejectsMissingIDAndDuplicates(t *testing.T) {
	t.Parallel()
	s := New("", "Acme", MetadataOverrides{}, t0)
	if err := s.Validate(); !errors.Is(err, apperrors.ErrInvalidSession) {
		t.Fatalf("expected invalid session for missing id, got %v", err)
	}
	s.ID = "a"
	s.SelectedItems[CategoryDiscovery] = []string{"q-1", "q-1"}
	if err := s.Validate(); !errors.Is(err, apperrors.ErrInvalidSession) {
		t.Fatalf("expected invalid session for duplicate selection, got %v", err)
	}
}

func TestSummaryCounts(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	s = AddOrUpdateItemNote(s, "q-1", "call back", t0)
	s, _ = ToggleSelection(s, CategoryDiscovery, "q-1")
	s, _ = ToggleSelection(s, CategoryObjections, "o-1")
	s = UpdateGeneralNotes(s, "  ")
	sum := s.Summary()
	if sum.NoteCount != 1 || sum.SelectedCount != 2 || sum.HasGeneralNotes {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}
