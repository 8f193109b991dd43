package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	catalogdto "demoprep/internal/modules/catalog/dto"
	exportdto "demoprep/internal/modules/export/dto"
	prepdto "demoprep/internal/modules/prep/dto"
	sessiondomain "demoprep/internal/modules/session/domain"
	sessiondto "demoprep/internal/modules/session/dto"
)

type fakeSessions struct {
	notes   map[string]string
	removed []string
	toggled []string
	saved   int
}

func (f *fakeSessions) List(context.Context) ([]sessiondto.SummaryOutput, error) { return nil, nil }
func (f *fakeSessions) Show(context.Context) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{}, nil
}
func (f *fakeSessions) Create(_ context.Context, name, _, _ string, _, _ []string) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{Session: sessiondomain.Session{Name: name}}, nil
}
func (f *fakeSessions) Use(context.Context, string) (sessiondto.SessionOutput, error) {
	return sessiondto.SessionOutput{}, nil
}
func (f *fakeSessions) Delete(_ context.Context, id string) (sessiondto.DeleteOutput, error) {
	return sessiondto.DeleteOutput{Deleted: true}, nil
}
func (f *fakeSessions) Save(context.Context) error {
	f.saved++
	return nil
}
func (f *fakeSessions) SetNote(_ context.Context, itemID, content string) error {
	f.notes[itemID] = content
	return nil
}
func (f *fakeSessions) RemoveNote(_ context.Context, itemID string) error {
	f.removed = append(f.removed, itemID)
	return nil
}
func (f *fakeSessions) GeneralNotes(context.Context, string) error { return nil }
func (f *fakeSessions) Toggle(_ context.Context, category, itemID string) (sessiondto.SelectionOutput, error) {
	f.toggled = append(f.toggled, category+"/"+itemID)
	return sessiondto.SelectionOutput{Category: category, ItemID: itemID, Selected: true}, nil
}
func (f *fakeSessions) SetWhy(context.Context, string, string) error { return nil }

type fakeCatalog struct{}

func (fakeCatalog) List(context.Context, string, string, string) ([]catalogdto.ItemOutput, error) {
	return nil, nil
}

type fakePrep struct{}

func (fakePrep) Generate(context.Context, string, []string, string, func(string)) (prepdto.ResultOutput, error) {
	return prepdto.ResultOutput{}, nil
}

type fakeExport struct{ dir string }

func (f *fakeExport) Export(_ context.Context, format, _, dir string) (exportdto.ExportOutput, error) {
	f.dir = dir
	return exportdto.ExportOutput{Format: format, Path: dir + "/acme-demo-session.md", ItemCount: 3}, nil
}

type fakeNotices struct{ pending []sessiondomain.Notice }

func (f *fakeNotices) Drain() []sessiondomain.Notice {
	out := f.pending
	f.pending = nil
	return out
}

func newTestModel() (Model, *fakeSessions, *fakeExport, *fakeNotices) {
	sessions := &fakeSessions{notes: map[string]string{}}
	export := &fakeExport{}
	notices := &fakeNotices{}
	return NewModel(sessions, fakeCatalog{}, fakePrep{}, export, notices, "out"), sessions, export, notices
}

func TestAfterFieldsKeepsInnerSpacing(t *testing.T) {
	t.Parallel()
	require.Equal(t, "call  back Tuesday", afterFields("note disc-1 call  back Tuesday", 2))
	require.Equal(t, "", afterFields("note disc-1", 2))
	require.Equal(t, "Acme Corp", afterFields("  new   Acme Corp", 1))
}

func TestPaletteNoteSetsAndRemoves(t *testing.T) {
	t.Parallel()
	m, sessions, _, _ := newTestModel()

	_, cmd := m.executePalette("note disc-1 ask about budget")
	require.NotNil(t, cmd)
	msg := cmd().(actionDoneMsg)
	require.NoError(t, msg.err)
	require.Equal(t, "ask about budget", sessions.notes["disc-1"])

	_, cmd = m.executePalette("note disc-1")
	cmd()
	require.Equal(t, []string{"disc-1"}, sessions.removed)
}

func TestPaletteSelectAndExport(t *testing.T) {
	t.Parallel()
	m, sessions, export, _ := newTestModel()

	_, cmd := m.executePalette("select usecases uc-embedded")
	msg := cmd().(actionDoneMsg)
	require.Equal(t, "selected uc-embedded", msg.status)
	require.Equal(t, []string{"usecases/uc-embedded"}, sessions.toggled)

	_, cmd = m.executePalette("export")
	msg = cmd().(actionDoneMsg)
	require.NoError(t, msg.err)
	require.Equal(t, "out", export.dir)
	require.Contains(t, msg.status, "exported 3 items")
}

func TestPaletteUnknownCommandWarns(t *testing.T) {
	t.Parallel()
	m, _, _, _ := newTestModel()
	next, cmd := m.executePalette("frobnicate")
	require.Nil(t, cmd)
	got := next.(Model)
	require.Equal(t, sessiondomain.NoticeWarning, got.statusLevel)
	require.Contains(t, got.status, "frobnicate")
}

func TestNoticesShowMostSevere(t *testing.T) {
	t.Parallel()
	m, _, _, notices := newTestModel()
	notices.pending = []sessiondomain.Notice{
		{Level: sessiondomain.NoticeError, Message: "save failed"},
		{Level: sessiondomain.NoticeSuccess, Message: "saved"},
	}
	next, _ := m.Update(noticeTickMsg{})
	got := next.(Model)
	require.Equal(t, sessiondomain.NoticeError, got.statusLevel)
	require.Equal(t, "save failed", got.status)
}
