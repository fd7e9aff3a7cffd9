package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ccvault/internal/search"
)

const debounceDelay = 200 * time.Millisecond

// message types

type searchResultMsg struct {
	query   string
	outcome *search.Outcome
	err     error
}

type debounceTickMsg struct {
	query string
}

// model

type model struct {
	engine     *search.Engine
	root       string
	base       search.Query // template; Text is replaced per keystroke
	query      string
	outcome    *search.Outcome
	cursor     int
	listOffset int
	input      textinput.Model
	preview    viewport.Model
	previewKey string // "session:message" to avoid duplicate renders
	width      int
	height     int
	ready      bool
	quitting   bool
	selected   *search.Result
}

func initialModel(engine *search.Engine, root string, q search.Query) model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Focus()
	ti.SetValue(q.Text)
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		engine:  engine,
		root:    root,
		base:    q,
		query:   q.Text,
		input:   ti,
		preview: viewport.New(0, 0),
	}
}

// Run starts the interactive incremental search and blocks until it exits.
// If the user selects a result, the transcript path is copied to clipboard.
func Run(engine *search.Engine, root string, q search.Query) error {
	m := initialModel(engine, root, q)
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.selected != nil {
		if err := clipboard.WriteAll(fm.selected.Path); err != nil {
			fmt.Println(fm.selected.Path)
			return nil
		}
		fmt.Printf("Copied to clipboard: %s\n", fm.selected.Path)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.query != "" {
		cmds = append(cmds, m.doSearch(m.query))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = viewport.New(m.previewWidth(), m.panelHeight())
		m.previewKey = ""
		m.refreshPreview()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if r := m.current(); r != nil {
				m.selected = r
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll()
				m.refreshPreview()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.outcome != nil && m.cursor < len(m.outcome.Results)-1 {
				m.cursor++
				m.adjustListScroll()
				m.refreshPreview()
			}
			return m, nil

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil
		}

		var tiCmd tea.Cmd
		m.input, tiCmd = m.input.Update(msg)
		cmds = append(cmds, tiCmd)

		if newQuery := m.input.Value(); newQuery != m.query {
			m.query = newQuery
			cmds = append(cmds, scheduleDebounce(newQuery))
		}
		return m, tea.Batch(cmds...)

	case debounceTickMsg:
		// only search if the query is still what it was when scheduled
		if msg.query == m.query {
			cmds = append(cmds, m.doSearch(msg.query))
		}
		return m, tea.Batch(cmds...)

	case searchResultMsg:
		if msg.query != m.query {
			return m, nil // stale
		}
		m.cursor = 0
		m.listOffset = 0
		m.previewKey = ""
		if msg.err != nil {
			m.outcome = nil
			m.preview.SetContent("Error: " + msg.err.Error())
			return m, nil
		}
		m.outcome = msg.outcome
		m.refreshPreview()
		return m, nil
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.input.View()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(m.preview.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)

	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

func (m model) renderList(width, height int) string {
	if m.outcome == nil || len(m.outcome.Results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
	}

	var lines []string
	for i, r := range m.outcome.Results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLines(r, width, i == m.cursor)...)
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatResultLines renders one result as two lines:
//
//	line 1: [>] speaker  MM-DD  project
//	line 2:     snippet (dimmed)
func formatResultLines(r search.Result, width int, selected bool) []string {
	var speaker string
	switch r.Speaker {
	case "human":
		speaker = styleSpeakerHuman.Render("human")
	case "assistant":
		speaker = styleSpeakerAssistant.Render("asst ")
	default:
		speaker = string(r.Speaker)
	}

	date := ""
	if !r.Timestamp.IsZero() {
		date = r.Timestamp.Format("01-02")
	}

	project := r.Project
	projectMax := width - 2 - 6 - 6 - 2
	if projectMax < 0 {
		projectMax = 0
	}
	if runewidth.StringWidth(project) > projectMax {
		project = runewidth.Truncate(project, projectMax, "")
	}

	line1 := fmt.Sprintf("%s %s %s", speaker, date, project)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippetMax := width - 4
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + stylePreviewMeta.Render(snippet)

	return []string{line1, line2}
}

func (m *model) adjustListScroll() {
	visible := m.panelHeight() / linesPerItem
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visible {
		m.listOffset = m.cursor - visible + 1
	}
}

func (m model) current() *search.Result {
	if m.outcome == nil || m.cursor >= len(m.outcome.Results) {
		return nil
	}
	r := m.outcome.Results[m.cursor]
	return &r
}

func (m *model) refreshPreview() {
	r := m.current()
	if r == nil {
		m.preview.SetContent("")
		m.previewKey = ""
		return
	}
	key := r.SessionID + ":" + r.MessageID
	if key == m.previewKey {
		return
	}
	content, hitLine := renderPreview(*r, m.query)
	m.preview.SetContent(content)
	if hitLine > 0 {
		m.preview.SetYOffset(hitLine)
	} else {
		m.preview.GotoTop()
	}
	m.previewKey = key
}

func (m model) statusBar() string {
	parts := []string{"0 results"}
	if m.outcome != nil {
		parts[0] = fmt.Sprintf("%d results", len(m.outcome.Results))
		if m.outcome.Downgraded {
			parts = append(parts, "semantic unavailable (smart match)")
		}
		if m.outcome.FilesSkipped > 0 || m.outcome.EntriesSkipped > 0 {
			parts = append(parts, fmt.Sprintf("skipped %d files / %d entries",
				m.outcome.FilesSkipped, m.outcome.EntriesSkipped))
		}
	}
	parts = append(parts, "up/dn navigate", "C-u/C-d preview", "Enter copy path", "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}

func (m model) doSearch(query string) tea.Cmd {
	engine := m.engine
	root := m.root
	q := m.base
	q.Text = query
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			return searchResultMsg{query: query}
		}
		outcome, err := engine.Search(context.Background(), root, q)
		return searchResultMsg{query: query, outcome: outcome, err: err}
	}
}

func scheduleDebounce(query string) tea.Cmd {
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceTickMsg{query: query}
	})
}

// layout helpers

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// input row + status bar + borders
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}
