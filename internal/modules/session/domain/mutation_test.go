package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "demoprep/internal/platform/errors"
)

func TestItemNoteKeepsOriginalTimestamp(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	later := t0.Add(2 * time.Hour)

	s = AddOrUpdateItemNote(s, "q-12", "  Follow up Tuesday ", t0)
	note := s.Notes.Items["q-12"]
	require.Equal(t, "Follow up Tuesday", note.Content)
	require.True(t, note.Timestamp.Equal(t0))
	require.True(t, note.LastModified.Equal(t0))

	s = AddOrUpdateItemNote(s, "q-12", "Follow up Wednesday", later)
	note = s.Notes.Items["q-12"]
	require.Equal(t, "Follow up Wednesday", note.Content)
	require.True(t, note.Timestamp.Equal(t0), "timestamp must survive updates")
	require.True(t, note.LastModified.Equal(later))

	s = AddOrUpdateItemNote(s, "q-12", "   ", later)
	_, ok := s.Notes.Items["q-12"]
	require.True(t, ok, "engine keeps empty notes; removal is the caller's decision")

	s = RemoveItemNote(s, "q-12")
	require.NotContains(t, s.Notes.Items, "q-12")
	require.NotPanics(t, func() { RemoveItemNote(s, "never-existed") })
}

func TestMutationsDoNotTouchInput(t *testing.T) {
	t.Parallel()
	base := New("a", "Acme", MetadataOverrides{}, t0)
	base = AddOrUpdateItemNote(base, "q-1", "keep", t0)
	snapshot := base.Clone()

	_ = AddOrUpdateItemNote(base, "q-1", "changed", t0.Add(time.Minute))
	_ = RemoveItemNote(base, "q-1")
	_ = UpdateGeneralNotes(base, "general")
	_, _ = ToggleSelection(base, CategoryDiscovery, "q-1")
	_, _ = MergeUseCaseDoc(base, "uc-1", DocPatch{Structured: map[Subsection]Fields{SubsectionTimeline: {"decisionTimeline": "Q1"}}})

	require.Equal(t, snapshot, base)
}

func TestGeneralNotesAreNotTrimmed(t *testing.T) {
	t.Parallel()
	s := UpdateGeneralNotes(New("a", "Acme", MetadataOverrides{}, t0), "  line one\n")
	require.Equal(t, "  line one\n", s.Notes.General)
}

func TestToggleSelectionIsItsOwnInverse(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	var err error
	for _, id := range []string{"d-3", "d-1", "d-2"} {
		s, err = ToggleSelection(s, CategoryDifferentiators, id)
		require.NoError(t, err)
	}
	for _, id := range []string{"d-2", "d-9"} {
		once, err := ToggleSelection(s, CategoryDifferentiators, id)
		require.NoError(t, err)
		twice, err := ToggleSelection(once, CategoryDifferentiators, id)
		require.NoError(t, err)
		require.Equal(t, s, twice)
	}
	require.True(t, IsSelected(s, CategoryDifferentiators, "d-1"))
	require.False(t, IsSelected(s, CategoryObjections, "d-1"))
}

func TestToggleSelectionRejectsUnknownCategory(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	_, err := ToggleSelection(s, Category("pricing"), "x")
	require.True(t, errors.Is(err, apperrors.ErrInvalidSession))
}

func TestMergeUseCaseDocKeepsSiblingSubsections(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	s, err := MergeUseCaseDoc(s, "uc", DocPatch{Structured: map[Subsection]Fields{
		SubsectionTimeline: {"decisionTimeline": "Q1"},
	}})
	require.NoError(t, err)

	s, err = MergeUseCaseDoc(s, "uc", DocPatch{Structured: map[Subsection]Fields{
		SubsectionStakeholders: {"primaryContact": "Jane"},
	}})
	require.NoError(t, err)

	doc := s.UseCaseDocumentation["uc"]
	require.Equal(t, "Q1", doc.Structured[SubsectionTimeline]["decisionTimeline"])
	require.Equal(t, "Jane", doc.Structured[SubsectionStakeholders]["primaryContact"])
}

func TestMergeUseCaseDocFieldLevel(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	s, err := MergeUseCaseDoc(s, "uc", DocPatch{Structured: map[Subsection]Fields{
		SubsectionTimeline: {"decisionTimeline": "Q1", "budgetStatus": "approved"},
	}})
	require.NoError(t, err)

	s, err = MergeUseCaseDoc(s, "uc", DocPatch{Structured: map[Subsection]Fields{
		SubsectionTimeline: {"decisionTimeline": "Q2", "budgetStatus": nil},
	}})
	require.NoError(t, err)

	timeline := s.UseCaseDocumentation["uc"].Structured[SubsectionTimeline]
	require.Equal(t, Fields{"decisionTimeline": "Q2", "budgetStatus": "approved"}, timeline)
}

func TestConcurrentDocEditsBothLand(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	s, err := MergeUseCaseDoc(s, "uc-7", DocPatch{Structured: map[Subsection]Fields{
		SubsectionBusinessRequirements: {"primaryGoal": "self-service analytics"},
	}})
	require.NoError(t, err)
	s, err = MergeUseCaseDoc(s, "uc-7", DocPatch{Structured: map[Subsection]Fields{
		SubsectionTechnicalRequirements: {"overview": map[string]any{"dataVolume": "2TB"}},
	}})
	require.NoError(t, err)

	doc := s.UseCaseDocumentation["uc-7"]
	require.Equal(t, "self-service analytics", doc.Structured[SubsectionBusinessRequirements]["primaryGoal"])
	require.Equal(t, map[string]any{"dataVolume": "2TB"}, doc.Structured[SubsectionTechnicalRequirements]["overview"])
	for _, sub := range []Subsection{SubsectionCustomerContext, SubsectionStakeholders, SubsectionTimeline} {
		require.Empty(t, doc.Structured[sub], "subsection %s should be untouched", sub)
	}
}

func TestMergeUseCaseDocNotesReplace(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	s, err := MergeUseCaseDoc(s, "uc", DocPatch{
		Structured: map[Subsection]Fields{SubsectionTimeline: {"currentPhase": "eval"}},
		Notes:      &DocNotes{Content: "first", QuickCaptureItems: []string{"a", "b"}},
	})
	require.NoError(t, err)
	s, err = MergeUseCaseDoc(s, "uc", DocPatch{Notes: &DocNotes{Content: "second"}})
	require.NoError(t, err)

	doc := s.UseCaseDocumentation["uc"]
	require.Equal(t, "second", doc.Notes.Content)
	require.Empty(t, doc.Notes.QuickCaptureItems)
	require.Equal(t, "eval", doc.Structured[SubsectionTimeline]["currentPhase"])
}

func TestMergeUseCaseDocRejectsUnknownSubsection(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{}, t0)
	_, err := MergeUseCaseDoc(s, "uc", DocPatch{Structured: map[Subsection]Fields{"budget": {"x": 1}}})
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	_, err = MergeUseCaseDoc(s, " ", DocPatch{})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateMetadataOverlaysFields(t *testing.T) {
	t.Parallel()
	s := New("a", "Acme", MetadataOverrides{Industries: []string{"retail"}}, t0)
	stage := "Proposal"
	s = UpdateMetadata(s, MetadataPatch{DealStage: &stage, UseCases: []string{"uc-1"}})
	require.Equal(t, "Proposal", s.Metadata.DealStage)
	require.Equal(t, []string{"retail"}, s.Metadata.Industries)
	require.Equal(t, []string{"uc-1"}, s.Metadata.UseCases)

	s, err := SetWhyAnswer(s, WhyNow, "renewal in May")
	require.NoError(t, err)
	require.Equal(t, "renewal in May", s.ThreeWhys[WhyNow])
	_, err = SetWhyAnswer(s, WhyQuestion("why-later"), "x")
	require.ErrorIs(t, err, apperrors.ErrInvalidSession)
}
