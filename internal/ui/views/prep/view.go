package prep

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	prepdomain "demoprep/internal/modules/prep/domain"
	prepdto "demoprep/internal/modules/prep/dto"
	"demoprep/internal/ui/theme"
)

type Port interface {
	Generate(ctx context.Context, company string, profiles []string, extra string, onChunk func(string)) (prepdto.ResultOutput, error)
}

// ChunkMsg carries streamed text for the run identified by Run.
type ChunkMsg struct {
	Run  int
	Text string
}

type DoneMsg struct {
	Run    int
	Result prepdomain.Result
	Err    error
}

type stream struct {
	chunks chan string
	done   chan DoneMsg
}

// Model collects the company and context, streams the brief into a viewport
// and renders the parsed sections once the run finishes.
type Model struct {
	port    Port
	company textinput.Model
	extra   textinput.Model
	output  viewport.Model
	spinner spinner.Model

	run     int
	running bool
	cancel  context.CancelFunc
	stream  *stream
	text    string
	result  *prepdomain.Result
	status  string
	width   int
	height  int
}

func New(port Port) Model {
	company := textinput.New()
	company.Placeholder = "company name"
	company.Prompt = "Company: "
	company.CharLimit = 200

	extra := textinput.New()
	extra.Placeholder = "optional context"
	extra.Prompt = "Context: "
	extra.CharLimit = 2000

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(0, 1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, company: company, extra: extra, output: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd { return nil }

// Focus gives the company input the keyboard.
func (m *Model) Focus() tea.Cmd {
	m.extra.Blur()
	return m.company.Focus()
}

func (m *Model) Blur() {
	m.company.Blur()
	m.extra.Blur()
}

// Typing reports whether an input owns the keyboard.
func (m Model) Typing() bool {
	return m.company.Focused() || m.extra.Focused()
}

func (m Model) Running() bool { return m.running }

// Start begins a run for company. Callers check Running first.
func (m *Model) Start(company string) tea.Cmd {
	company = strings.TrimSpace(company)
	if company == "" {
		m.status = "company name is required"
		return nil
	}
	m.company.SetValue(company)
	m.Blur()
	m.run++
	m.running = true
	m.result = nil
	m.status = ""
	m.text = ""
	m.output.SetContent("")

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	s := &stream{chunks: make(chan string, 64), done: make(chan DoneMsg, 1)}
	m.stream = s
	run := m.run
	extra := m.extra.Value()
	port := m.port

	go func() {
		out, err := port.Generate(ctx, company, nil, extra, func(chunk string) {
			select {
			case s.chunks <- chunk:
			case <-ctx.Done():
			}
		})
		close(s.chunks)
		s.done <- DoneMsg{Run: run, Result: out.Result, Err: err}
	}()
	return tea.Batch(waitFor(run, s), m.spinner.Tick)
}

// Cancel stops the running stream. The partial brief is kept.
func (m *Model) Cancel() {
	if m.running && m.cancel != nil {
		m.cancel()
		m.status = "cancelling…"
	}
}

func waitFor(run int, s *stream) tea.Cmd {
	return func() tea.Msg {
		if chunk, ok := <-s.chunks; ok {
			return ChunkMsg{Run: run, Text: chunk}
		}
		return <-s.done
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.company.Width = m.width - 12
		m.extra.Width = m.width - 12
		m.output.Width = m.width - 2
		m.output.Height = m.height - 5

	case ChunkMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.text += msg.Text
		m.output.SetContent(m.text)
		m.output.GotoBottom()
		return m, waitFor(m.run, m.stream)

	case DoneMsg:
		if msg.Run != m.run {
			return m, nil
		}
		m.running = false
		m.cancel = nil
		m.stream = nil
		res := msg.Result
		m.result = &res
		switch {
		case msg.Err != nil:
			m.status = "error: " + msg.Err.Error()
		case res.Interrupted:
			m.status = "cancelled, partial brief kept"
		default:
			m.status = "done"
		}
		m.output.SetContent(m.renderResult())
		m.output.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.Typing() {
			switch msg.String() {
			case "enter":
				if m.running {
					return m, nil
				}
				return m, m.Start(m.company.Value())
			case "esc":
				m.Blur()
				return m, nil
			case "up", "down":
				if m.company.Focused() {
					m.company.Blur()
					return m, m.extra.Focus()
				}
				m.extra.Blur()
				return m, m.company.Focus()
			}
			var cmd tea.Cmd
			m.company, cmd = m.company.Update(msg)
			cmds = append(cmds, cmd)
			m.extra, cmd = m.extra.Update(msg)
			cmds = append(cmds, cmd)
			return m, tea.Batch(cmds...)
		}
		switch msg.String() {
		case "esc":
			m.Cancel()
			return m, nil
		case "i", "e":
			if !m.running {
				return m, m.Focus()
			}
		}
	}

	var cmd tea.Cmd
	m.output, cmd = m.output.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var header strings.Builder
	header.WriteString(m.company.View() + "\n")
	header.WriteString(m.extra.View() + "\n")
	switch {
	case m.running:
		header.WriteString(m.spinner.View() + " generating… " + theme.Muted.Render("esc: cancel"))
	case m.status != "":
		header.WriteString(theme.Muted.Render(m.status))
	default:
		header.WriteString(theme.Muted.Render("i: edit  enter: generate  ↑/↓: switch field"))
	}
	body := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Width(m.width - 2).
		Height(m.height - 5).
		Render(m.output.View())
	return lipgloss.JoinVertical(lipgloss.Left, header.String(), body)
}

func (m Model) renderResult() string {
	if m.result == nil {
		return ""
	}
	if !m.result.HasContent() {
		if m.result.Text != "" {
			return m.result.Text
		}
		return m.text
	}
	var sb strings.Builder
	for _, key := range prepdomain.SectionOrder {
		content, ok := m.result.Sections[key]
		if !ok {
			continue
		}
		sb.WriteString(theme.Title.Render(key.Label()) + "\n")
		sb.WriteString(strings.TrimSpace(content) + "\n\n")
	}
	return sb.String()
}
