package sessions

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondomain "demoprep/internal/modules/session/domain"
	sessiondto "demoprep/internal/modules/session/dto"
	"demoprep/internal/ui/theme"
)

const dateLayout = "2006-01-02"

type Port interface {
	List(ctx context.Context) ([]sessiondto.SummaryOutput, error)
	Show(ctx context.Context) (sessiondto.SessionOutput, error)
}

type LoadedMsg struct {
	Sessions []sessiondto.SummaryOutput
	Current  sessiondto.SessionOutput
	HasCur   bool
	Err      error
}

type sessionItem struct {
	summary sessiondto.SummaryOutput
}

func (i sessionItem) Title() string {
	if i.summary.Current {
		return "● " + i.summary.Name
	}
	return i.summary.Name
}

func (i sessionItem) Description() string {
	return fmt.Sprintf("%s  %s  notes %d  selected %d",
		i.summary.DealStage, i.summary.DemoDate.Format(dateLayout), i.summary.NoteCount, i.summary.SelectedCount)
}

func (i sessionItem) FilterValue() string { return i.summary.Name }

// Model lists sessions on the left and details the current one on the right.
type Model struct {
	port    Port
	list    list.Model
	current sessiondomain.Session
	hasCur  bool
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Sessions"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, preview: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the session list and the current session.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		sessions, err := m.port.List(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		current, err := m.port.Show(ctx)
		return LoadedMsg{Sessions: sessions, Current: current, HasCur: err == nil}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Sessions: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Sessions"
		items := make([]list.Item, len(msg.Sessions))
		for i, s := range msg.Sessions {
			items[i] = sessionItem{summary: s}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.current = msg.Current.Session
		m.hasCur = msg.HasCur
		m.preview.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		m.preview, cmd = m.preview.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading sessions…")
	}
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(m.width - listW - 2).
		Height(m.height - 2).
		Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) SelectedSessionID() (string, bool) {
	if item, ok := m.list.SelectedItem().(sessionItem); ok {
		return item.summary.ID, true
	}
	return "", false
}

// Current returns the current session as last loaded.
func (m Model) Current() (sessiondomain.Session, bool) {
	return m.current, m.hasCur
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	m.list.SetSize(listW, m.height)
	m.preview.Width = m.width - listW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	if !m.hasCur {
		return theme.Muted.Render("No current session.\n\n:new <name> creates one, enter switches to the highlighted one.")
	}
	s := m.current
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(s.Name) + "\n\n")
	sb.WriteString(theme.Muted.Render("demo date:  ") + s.Metadata.DemoDate.Format(dateLayout) + "\n")
	sb.WriteString(theme.Muted.Render("deal stage: ") + s.Metadata.DealStage + "\n")
	if len(s.Metadata.Industries) > 0 {
		sb.WriteString(theme.Muted.Render("industries: ") + strings.Join(s.Metadata.Industries, ", ") + "\n")
	}
	if len(s.Metadata.UseCases) > 0 {
		sb.WriteString(theme.Muted.Render("use cases:  ") + strings.Join(s.Metadata.UseCases, ", ") + "\n")
	}
	sb.WriteString(theme.Muted.Render("updated:    ") + s.UpdatedAt.Local().Format("2006-01-02 15:04") + "\n")

	for _, q := range sessiondomain.WhyQuestions {
		if answer := strings.TrimSpace(s.ThreeWhys[q]); answer != "" {
			sb.WriteString("\n" + theme.Hot.Render(string(q)) + "\n" + answer + "\n")
		}
	}
	if len(s.Notes.Items) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Notes") + "\n")
		ids := make([]string, 0, len(s.Notes.Items))
		for id := range s.Notes.Items {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			sb.WriteString(theme.Muted.Render(id+": ") + s.Notes.Items[id].Content + "\n")
		}
	}
	if s.HasGeneralNotes() {
		sb.WriteString("\n" + theme.Title.Render("General notes") + "\n" + s.Notes.General + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: switch  d: delete  ctrl+s: save"))
	return sb.String()
}
