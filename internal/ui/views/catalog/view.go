package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	catalogdto "demoprep/internal/modules/catalog/dto"
	sessiondomain "demoprep/internal/modules/session/domain"
	"demoprep/internal/ui/theme"
)

var categories = []string{"discovery", "usecases", "differentiators", "objections"}

var categoryTitles = map[string]string{
	"discovery":       "Discovery",
	"usecases":        "Use Cases",
	"differentiators": "Differentiators",
	"objections":      "Objections",
}

type Port interface {
	List(ctx context.Context, category, query, industry string) ([]catalogdto.ItemOutput, error)
}

type ItemsLoadedMsg struct {
	Category string
	Items    []catalogdto.ItemOutput
	Err      error
}

type catalogItem struct {
	item     catalogdto.ItemOutput
	selected bool
	noted    bool
}

func (i catalogItem) Title() string {
	mark := "[ ] "
	if i.selected {
		mark = "[x] "
	}
	return mark + i.item.Title
}

func (i catalogItem) Description() string {
	desc := i.item.Group
	if i.noted {
		desc += "  ✎"
	}
	return desc
}

func (i catalogItem) FilterValue() string { return i.item.Title + " " + i.item.Group }

type Model struct {
	port     Port
	category int
	items    []catalogdto.ItemOutput
	session  sessiondomain.Session
	list     list.Model
	preview  viewport.Model
	width    int
	height   int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = theme.Title
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	m := Model{port: port, list: l, preview: vp}
	m.list.Title = m.title()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) Category() string { return categories[m.category] }

// SetSession refreshes selection markers and notes from the current session.
func (m *Model) SetSession(s sessiondomain.Session) tea.Cmd {
	m.session = s
	return m.rebuild()
}

func (m Model) SelectedItem() (catalogdto.ItemOutput, bool) {
	if item, ok := m.list.SelectedItem().(catalogItem); ok {
		return item.item, true
	}
	return catalogdto.ItemOutput{}, false
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listW := m.width / 2
		m.list.SetSize(listW, m.height)
		m.preview.Width = m.width - listW - 4
		m.preview.Height = m.height - 4

	case ItemsLoadedMsg:
		if msg.Category != m.Category() {
			return m, nil
		}
		if msg.Err != nil {
			m.list.Title = m.title() + ": " + msg.Err.Error()
			return m, nil
		}
		m.items = msg.Items
		cmds = append(cmds, m.rebuild())

	case tea.KeyMsg:
		if !m.Filtering() && msg.String() == "c" {
			m.category = (m.category + 1) % len(categories)
			m.list.Title = m.title()
			m.list.ResetFilter()
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.preview.SetContent(m.renderDetail())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width / 2
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

func (m Model) title() string {
	var parts []string
	for i, c := range categories {
		if i == m.category {
			parts = append(parts, "["+categoryTitles[c]+"]")
		} else {
			parts = append(parts, categoryTitles[c])
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) rebuild() tea.Cmd {
	selected := m.session.SelectedItems[sessiondomain.Category(m.Category())]
	items := make([]list.Item, len(m.items))
	for i, it := range m.items {
		_, noted := m.session.Notes.Items[it.ID]
		items[i] = catalogItem{item: it, selected: slices.Contains(selected, it.ID), noted: noted}
	}
	cmd := m.list.SetItems(items)
	m.preview.SetContent(m.renderDetail())
	return cmd
}

func (m Model) renderDetail() string {
	item, ok := m.SelectedItem()
	if !ok {
		return theme.Muted.Render("No items")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(item.Title) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:    ") + item.ID + "\n")
	if item.Group != "" {
		sb.WriteString(theme.Muted.Render("group: ") + item.Group + "\n")
	}
	if item.Detail != "" {
		sb.WriteString("\n" + item.Detail + "\n")
	}
	if note, ok := m.session.Notes.Items[item.ID]; ok {
		sb.WriteString("\n" + theme.Hot.Render("Note") + "\n" + note.Content + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("space: select  n: note  c: next category  /: filter"))
	return sb.String()
}

func (m Model) loadCmd() tea.Cmd {
	category := m.Category()
	return func() tea.Msg {
		items, err := m.port.List(context.Background(), category, "", "")
		return ItemsLoadedMsg{Category: category, Items: items, Err: err}
	}
}
