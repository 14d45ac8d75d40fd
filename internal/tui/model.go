package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"insight-helper/internal/service"
)

// GeneratePort is the TUI-facing subset of the pipeline service.
type GeneratePort interface {
	GenerateOnline(ctx context.Context, topic string, opts service.GenerateOptions) (*service.Result, error)
}

// Model is the Bubble Tea model for the control surface: a topic input
// on top of a viewer for the generated per-language posts.
type Model struct {
	service  GeneratePort
	opts     service.GenerateOptions
	input    textinput.Model
	viewport viewport.Model
	result   *service.Result
	langs    []string
	cursor   int
	status   string
	ready    bool
}

// New creates a new TUI model. result may carry the outcome of a local
// ingest run before the TUI started, or be nil.
func New(svc GeneratePort, result *service.Result, opts service.GenerateOptions) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a topic and press Enter for online search"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{
		service:  svc,
		opts:     opts,
		input:    ti,
		viewport: vp,
		status:   "Ready.",
	}
	m.setResult(result)
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := postBoxStyle.GetFrameSize()
		_, qh := topicBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1 // header + digest + status + input + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentPost())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			topic := strings.TrimSpace(m.input.Value())
			if topic != "" {
				res, err := m.service.GenerateOnline(context.Background(), topic, m.opts)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.setResult(nil)
				} else {
					m.status = fmt.Sprintf("Generated posts for %q", topic)
					m.setResult(res)
				}
				m.viewport.SetContent(m.renderCurrentPost())
				return m, nil
			}
		case "left", "up":
			if len(m.langs) > 0 {
				m.cursor = (m.cursor - 1 + len(m.langs)) % len(m.langs)
				m.viewport.SetContent(m.renderCurrentPost())
				return m, nil
			}
		case "right", "down":
			if len(m.langs) > 0 {
				m.cursor = (m.cursor + 1) % len(m.langs)
				m.viewport.SetContent(m.renderCurrentPost())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current post.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Insight Helper")
	digest := ""
	if m.result != nil {
		digest = m.result.Digest
	}
	digestLine := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(digest)
	input := topicBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	posts := postBoxStyle.Render(m.viewport.View())
	return header + "\n" + digestLine + "\n" + posts + "\n" + input + "\n" + status
}

func (m *Model) setResult(res *service.Result) {
	m.result = res
	m.langs = nil
	m.cursor = 0
	if res == nil {
		return
	}
	for lang := range res.Posts {
		m.langs = append(m.langs, lang)
	}
	sort.Strings(m.langs)
}

func (m Model) renderCurrentPost() string {
	if m.result == nil || len(m.langs) == 0 {
		return "No posts yet. Enter a topic to search online sources."
	}
	lang := m.langs[m.cursor]
	title := langStyle.Render(fmt.Sprintf("%s · %s  (%d/%d)",
		strings.ToUpper(lang), m.opts.Platform, m.cursor+1, len(m.langs)))
	return title + "\n\n" + m.result.Posts[lang]
}

var (
	postBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	topicBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	langStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
