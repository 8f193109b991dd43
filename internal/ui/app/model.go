package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "demoprep/internal/modules/catalog/dto"
	exportdto "demoprep/internal/modules/export/dto"
	prepdto "demoprep/internal/modules/prep/dto"
	sessiondomain "demoprep/internal/modules/session/domain"
	sessiondto "demoprep/internal/modules/session/dto"
	"demoprep/internal/ui/components"
	"demoprep/internal/ui/theme"
	catalogview "demoprep/internal/ui/views/catalog"
	prepview "demoprep/internal/ui/views/prep"
	sessionsview "demoprep/internal/ui/views/sessions"
)

const noticePoll = time.Second

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	List(ctx context.Context) ([]sessiondto.SummaryOutput, error)
	Show(ctx context.Context) (sessiondto.SessionOutput, error)
	Create(ctx context.Context, name, demoDate, dealStage string, industries, useCases []string) (sessiondto.SessionOutput, error)
	Use(ctx context.Context, id string) (sessiondto.SessionOutput, error)
	Delete(ctx context.Context, id string) (sessiondto.DeleteOutput, error)
	Save(ctx context.Context) error
	SetNote(ctx context.Context, itemID, content string) error
	RemoveNote(ctx context.Context, itemID string) error
	GeneralNotes(ctx context.Context, content string) error
	Toggle(ctx context.Context, category, itemID string) (sessiondto.SelectionOutput, error)
	SetWhy(ctx context.Context, question, answer string) error
}

type catalogPort interface {
	List(ctx context.Context, category, query, industry string) ([]catalogdto.ItemOutput, error)
}

type prepPort interface {
	Generate(ctx context.Context, company string, profiles []string, extra string, onChunk func(string)) (prepdto.ResultOutput, error)
}

type exportPort interface {
	Export(ctx context.Context, format, path, dir string) (exportdto.ExportOutput, error)
}

type noticePort interface {
	Drain() []sessiondomain.Notice
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabSessions tabID = iota
	tabCatalog
	tabPrep
	tabCount
)

var tabLabels = [tabCount]string{"Sessions", "Catalog", "Prep"}

// ─── async messages ──────────────────────────────────────────────────────────

// actionDoneMsg ends every session mutation; the session views reload after it.
type actionDoneMsg struct {
	status string
	err    error
}

type noticeTickMsg struct{}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Delete  key.Binding
	Save    key.Binding
	Toggle  key.Binding
	Note    key.Binding
	Cycle   key.Binding
	Export  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "switch session")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete session")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select item")),
		Note:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note item")),
		Cycle:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "next category")),
		Export:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export markdown")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Delete, k.Save},
		{k.Toggle, k.Note, k.Cycle, k.Export},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the notice line
// and the command palette; sub-views only render and report.
type Model struct {
	exportDir string

	session sessionPort
	export  exportPort
	notices noticePort

	sessionsView sessionsview.Model
	catalogView  catalogview.Model
	prepView     prepview.Model

	activeTab   tabID
	keys        keyMap
	help        help.Model
	showHelp    bool
	palette     components.Palette
	status      string
	statusLevel sessiondomain.NoticeLevel
	width       int
	height      int
}

func NewModel(session sessionPort, catalog catalogPort, prep prepPort, export exportPort, notices noticePort, exportDir string) Model {
	if exportDir == "" {
		exportDir = "."
	}
	return Model{
		exportDir:    exportDir,
		session:      session,
		export:       export,
		notices:      notices,
		sessionsView: sessionsview.New(session),
		catalogView:  catalogview.New(catalog),
		prepView:     prepview.New(prep),
		activeTab:    tabSessions,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
		statusLevel:  sessiondomain.NoticeInfo,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.sessionsView.Init(),
		m.catalogView.Init(),
		m.prepView.Init(),
		noticeTick(),
	)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case noticeTickMsg:
		m.drainNotices()
		return m, noticeTick()

	case actionDoneMsg:
		if msg.err != nil {
			m.setStatus(sessiondomain.NoticeError, msg.err.Error())
		} else if msg.status != "" {
			m.setStatus(sessiondomain.NoticeSuccess, msg.status)
		}
		m.drainNotices()
		return m, m.sessionsView.Reload()

	case sessionsview.LoadedMsg:
		var cmd tea.Cmd
		m.sessionsView, cmd = m.sessionsView.Update(msg)
		cmds = append(cmds, cmd)
		current, _ := m.sessionsView.Current()
		cmds = append(cmds, m.catalogView.SetSession(current))
		m.drainNotices()
		return m, tea.Batch(cmds...)

	case catalogview.ItemsLoadedMsg:
		var cmd tea.Cmd
		m.catalogView, cmd = m.catalogView.Update(msg)
		return m, cmd

	case prepview.ChunkMsg, prepview.DoneMsg:
		var cmd tea.Cmd
		m.prepView, cmd = m.prepView.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var c1, c2 tea.Cmd
		m.sessionsView, c1 = m.sessionsView.Update(msg)
		m.prepView, c2 = m.prepView.Update(msg)
		return m, tea.Batch(c1, c2)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.setStatus(sessiondomain.NoticeInfo, "ready")
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.subViewCapturesKeys() {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.switchTab((m.activeTab + 1) % tabCount)
			return m, nil
		case "shift+tab":
			m.switchTab((m.activeTab + tabCount - 1) % tabCount)
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "ctrl+s":
			return m, m.saveCmd()
		case "x":
			return m, m.exportCmd("markdown", m.exportDir)
		}

		switch m.activeTab {
		case tabSessions:
			switch msg.String() {
			case "enter":
				if id, ok := m.sessionsView.SelectedSessionID(); ok {
					return m, m.useCmd(id)
				}
				return m, nil
			case "d":
				if id, ok := m.sessionsView.SelectedSessionID(); ok {
					return m, m.palette.OpenWith("delete " + id)
				}
				return m, nil
			}
		case tabCatalog:
			switch msg.String() {
			case " ":
				if item, ok := m.catalogView.SelectedItem(); ok {
					return m, m.toggleCmd(m.catalogView.Category(), item.ID)
				}
				return m, nil
			case "n":
				if item, ok := m.catalogView.SelectedItem(); ok {
					prefill := "note " + item.ID + " "
					if current, ok := m.sessionsView.Current(); ok {
						if note, ok := current.Notes.Items[item.ID]; ok {
							prefill += note.Content
						}
					}
					return m, m.palette.OpenWith(prefill)
				}
				return m, nil
			}
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabSessions:
		m.sessionsView, tabCmd = m.sessionsView.Update(msg)
	case tabCatalog:
		m.catalogView, tabCmd = m.catalogView.Update(msg)
	case tabPrep:
		m.prepView, tabCmd = m.prepView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabSessions:
		return m.sessionsView.View()
	case tabCatalog:
		return m.catalogView.View()
	case tabPrep:
		return m.prepView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "demoprep  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := theme.Notice(m.statusLevel).Render(m.status)
	if current, ok := m.sessionsView.Current(); ok {
		left = theme.Hot.Render("● "+current.Name) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  ::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "new":
		return m, m.createCmd(afterFields(input, 1))

	case "use":
		if len(parts) < 2 {
			m.setStatus(sessiondomain.NoticeWarning, "usage: use <session-id>")
			return m, nil
		}
		return m, m.useCmd(parts[1])

	case "delete":
		if len(parts) < 2 {
			m.setStatus(sessiondomain.NoticeWarning, "usage: delete <session-id>")
			return m, nil
		}
		return m, m.deleteCmd(parts[1])

	case "save":
		return m, m.saveCmd()

	case "note":
		if len(parts) < 2 {
			m.setStatus(sessiondomain.NoticeWarning, "usage: note <item-id> <text>")
			return m, nil
		}
		return m, m.noteCmd(parts[1], afterFields(input, 2))

	case "general":
		return m, m.generalCmd(afterFields(input, 1))

	case "why":
		if len(parts) < 2 {
			m.setStatus(sessiondomain.NoticeWarning, "usage: why <question> <answer>")
			return m, nil
		}
		return m, m.whyCmd(parts[1], afterFields(input, 2))

	case "select":
		if len(parts) < 3 {
			m.setStatus(sessiondomain.NoticeWarning, "usage: select <category> <item-id>")
			return m, nil
		}
		return m, m.toggleCmd(parts[1], parts[2])

	case "export":
		format, dir := "markdown", m.exportDir
		if len(parts) >= 2 {
			format = parts[1]
		}
		if len(parts) >= 3 {
			dir = parts[2]
		}
		return m, m.exportCmd(format, dir)

	case "prep":
		if m.prepView.Running() {
			m.setStatus(sessiondomain.NoticeWarning, "a brief is already generating")
			return m, nil
		}
		m.switchTab(tabPrep)
		return m, m.prepView.Start(afterFields(input, 1))

	default:
		m.setStatus(sessiondomain.NoticeWarning, "unknown command: "+parts[0])
	}
	return m, nil
}

// afterFields returns input with its first n whitespace-separated fields
// removed, keeping the spacing of what remains.
func afterFields(input string, n int) string {
	s := strings.TrimLeft(input, " \t")
	for i := 0; i < n; i++ {
		idx := strings.IndexAny(s, " \t")
		if idx < 0 {
			return ""
		}
		s = strings.TrimLeft(s[idx:], " \t")
	}
	return s
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturesKeys reports whether the active tab is taking free text, in
// which case global key bindings yield.
func (m Model) subViewCapturesKeys() bool {
	switch m.activeTab {
	case tabSessions:
		return m.sessionsView.Filtering()
	case tabCatalog:
		return m.catalogView.Filtering()
	case tabPrep:
		return m.prepView.Typing()
	}
	return false
}

func (m *Model) switchTab(tab tabID) {
	if m.activeTab == tabPrep && tab != tabPrep {
		m.prepView.Blur()
	}
	m.activeTab = tab
}

func (m *Model) setStatus(level sessiondomain.NoticeLevel, text string) {
	m.statusLevel = level
	m.status = text
}

// drainNotices shows the most severe pending notice; later ones of equal
// severity win.
func (m *Model) drainNotices() {
	if m.notices == nil {
		return
	}
	notices := m.notices.Drain()
	if len(notices) == 0 {
		return
	}
	best := notices[0]
	for _, n := range notices[1:] {
		if severity(n.Level) >= severity(best.Level) {
			best = n
		}
	}
	m.setStatus(best.Level, best.Message)
}

func severity(level sessiondomain.NoticeLevel) int {
	switch level {
	case sessiondomain.NoticeError:
		return 3
	case sessiondomain.NoticeWarning:
		return 2
	case sessiondomain.NoticeSuccess:
		return 1
	}
	return 0
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.sessionsView, _ = m.sessionsView.Update(sz)
	m.catalogView, _ = m.catalogView.Update(sz)
	m.prepView, _ = m.prepView.Update(sz)
}

// ─── async commands ──────────────────────────────────────────────────────────

func noticeTick() tea.Cmd {
	return tea.Tick(noticePoll, func(time.Time) tea.Msg { return noticeTickMsg{} })
}

func (m Model) createCmd(name string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Create(context.Background(), name, "", "", nil, nil)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "created " + out.Session.Name}
	}
}

func (m Model) useCmd(id string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Use(context.Background(), id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "switched to " + out.Session.Name}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Delete(context.Background(), id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if !out.Deleted {
			return actionDoneMsg{status: "nothing to delete for " + id}
		}
		return actionDoneMsg{status: "deleted " + id}
	}
}

func (m Model) saveCmd() tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.session.Save(context.Background())}
	}
}

func (m Model) noteCmd(itemID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if strings.TrimSpace(text) == "" {
			if err := m.session.RemoveNote(ctx, itemID); err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{status: "note removed from " + itemID}
		}
		if err := m.session.SetNote(ctx, itemID, text); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "note saved on " + itemID}
	}
}

func (m Model) generalCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := m.session.GeneralNotes(context.Background(), text); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "general notes updated"}
	}
}

func (m Model) whyCmd(question, answer string) tea.Cmd {
	return func() tea.Msg {
		if err := m.session.SetWhy(context.Background(), question, answer); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: question + " answered"}
	}
}

func (m Model) toggleCmd(category, itemID string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Toggle(context.Background(), category, itemID)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		verb := "deselected "
		if out.Selected {
			verb = "selected "
		}
		return actionDoneMsg{status: verb + out.ItemID}
	}
}

func (m Model) exportCmd(format, dir string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.export.Export(context.Background(), format, "", dir)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		verb := "exported"
		if out.Updated {
			verb = "updated"
		}
		return actionDoneMsg{status: fmt.Sprintf("%s %d items to %s", verb, out.ItemCount, out.Path)}
	}
}
