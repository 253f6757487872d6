// Package tui is an interactive browser over a parsed TAP session.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/dkoosis/tapout/pkg/render"
	"github.com/dkoosis/tapout/pkg/tap"
)

// Run opens the browser and blocks until the user quits or ctx ends. Keys are
// read from the controlling terminal so TAP can still arrive on stdin.
func Run(ctx context.Context, s *tap.Session, theme render.Theme) error {
	program := tea.NewProgram(New(s, theme),
		tea.WithContext(ctx), tea.WithAltScreen(), tea.WithInputTTY())
	_, err := program.Run()
	return err
}

// row is one line of the list pane: a group header or an assertion.
type row struct {
	header    bool
	title     string
	assertion tap.Assertion
}

// Model is the bubbletea model for the browser.
type Model struct {
	session      *tap.Session
	theme        render.Theme
	stats        tap.Stats
	failuresOnly bool

	rows     []row
	selected int // index into rows; always an assertion row, or -1

	viewport    viewport.Model
	ready       bool
	width       int
	height      int
	listWidth   int
	detailWidth int
}

// New builds a browser model over s.
func New(s *tap.Session, theme render.Theme) Model {
	m := Model{
		session:  s,
		theme:    theme,
		stats:    tap.ComputeStats(s),
		viewport: viewport.New(0, 0),
	}
	m.rebuild()
	return m
}

// Init implements tea.Model. The browser needs no startup command.
func (m Model) Init() tea.Cmd { return nil }

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "f":
			m.failuresOnly = !m.failuresOnly
			m.rebuild()
		case "pgdown", " ":
			m.viewport.SetYOffset(m.viewport.YOffset + max(1, m.viewport.Height/2))
		case "pgup", "b":
			m.viewport.SetYOffset(m.viewport.YOffset - max(1, m.viewport.Height/2))
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.listWidth = min(max(m.calculateListWidth(), 24), m.width/2)
		m.detailWidth = max(m.width-m.listWidth-1, 10)
		m.viewport.Width = max(m.detailWidth-4, 1)
		m.viewport.Height = max(m.height-8, 3)
		m.ready = true
		m.refreshViewport()
	}
	return m, nil
}

// rebuild recomputes the visible rows and keeps the selection on an
// assertion row.
func (m *Model) rebuild() {
	var prev *tap.Assertion
	if a, ok := m.Selected(); ok {
		prev = &a
	}

	m.rows = nil
	for _, g := range m.session.Groups() {
		var items []row
		for _, a := range g.Assertions {
			if m.failuresOnly && a.OK {
				continue
			}
			items = append(items, row{title: a.Title, assertion: a})
		}
		if len(items) == 0 {
			continue
		}
		title := g.Test.Title
		if title == "" {
			title = "(top level)"
		}
		m.rows = append(m.rows, row{header: true, title: title})
		m.rows = append(m.rows, items...)
	}

	m.selected = -1
	for i, r := range m.rows {
		if r.header {
			continue
		}
		if m.selected < 0 {
			m.selected = i
		}
		if prev != nil && r.assertion.AssertionNumber == prev.AssertionNumber {
			m.selected = i
			break
		}
	}
	m.refreshViewport()
}

func (m *Model) move(delta int) {
	for i := m.selected + delta; i >= 0 && i < len(m.rows); i += delta {
		if !m.rows[i].header {
			m.selected = i
			m.refreshViewport()
			return
		}
	}
}

// Selected returns the assertion under the cursor.
func (m Model) Selected() (tap.Assertion, bool) {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return tap.Assertion{}, false
	}
	return m.rows[m.selected].assertion, true
}

func (m *Model) calculateListWidth() int {
	widest := 0
	for _, r := range m.rows {
		widest = max(widest, runewidth.StringWidth(r.title)+6)
	}
	return widest + 4
}

func (m *Model) refreshViewport() {
	a, ok := m.Selected()
	if !ok {
		m.viewport.SetContent(m.theme.Muted.Render("No assertions to show"))
		return
	}
	m.viewport.SetContent(m.detail(a))
	m.viewport.GotoTop()
}

func (m Model) detail(a tap.Assertion) string {
	var sb strings.Builder
	icon, style := m.theme.Assertion(a)
	status := style.Render(icon + " ok")
	if !a.OK {
		status = style.Render(icon + " not ok")
	}
	sb.WriteString(status + "  " + m.theme.Bold.Render(a.Title) + "\n")
	sb.WriteString(m.theme.Muted.Render(fmt.Sprintf("assertion %d, line %d", a.AssertionNumber, a.LineNumber)) + "\n")
	if a.Directive != nil {
		sb.WriteString(m.theme.Directive.Render(strings.ToUpper(string(a.Directive.Kind))+" "+a.Directive.Reason) + "\n")
	}
	sb.WriteString("\n")

	if len(a.Diagnostic) == 0 && a.DiagnosticValue == nil {
		sb.WriteString(m.theme.Muted.Render("no diagnostic"))
		return sb.String()
	}
	if a.DiagnosticValue != nil {
		sb.WriteString(fmt.Sprintf("%v", a.DiagnosticValue) + "\n")
	}
	keys := make([]string, 0, len(a.Diagnostic))
	for k := range a.Diagnostic {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(m.theme.Primary.Render(k+":") + " " + fmt.Sprintf("%v", a.Diagnostic[k]) + "\n")
	}
	if a.RawDiagnostic != "" {
		sb.WriteString("\n" + m.theme.Diagnostic.Render(a.RawDiagnostic))
	}
	return sb.String()
}

// View renders the title bar, the list and detail panels, and the key help.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	contentHeight := max(m.height-6, 3)

	listLines := m.renderList()
	if m.selected >= contentHeight {
		listLines = listLines[m.selected-contentHeight+1:]
	}
	listLines = fit(listLines, contentHeight)
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	listPanel := box.Width(m.listWidth).Render(strings.Join(listLines, "\n"))

	detailLines := fit(strings.Split(m.viewport.View(), "\n"), contentHeight)
	detailPanel := box.Width(m.detailWidth).Render(strings.Join(detailLines, "\n"))

	filter := "all"
	if m.failuresOnly {
		filter = "failures"
	}
	title := m.theme.Bold.Render(fmt.Sprintf("tapout  %d passed  %d failed  [%s]",
		m.stats.Passed, m.stats.Failed, filter))
	help := m.theme.Muted.Render("↑/↓ navigate • pgup/pgdn scroll • f failures only • q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel),
		help)
}

func (m Model) renderList() []string {
	if len(m.rows) == 0 {
		return []string{m.theme.Muted.Render("nothing to show")}
	}
	width := max(m.listWidth-6, 8)
	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		if r.header {
			lines = append(lines, m.theme.Bold.Render(runewidth.Truncate(r.title, width, "...")))
			continue
		}
		icon, style := m.theme.Assertion(r.assertion)
		text := runewidth.Truncate(r.title, width-4, "...")
		if i == m.selected {
			lines = append(lines, m.theme.Bold.Render("▶ "+icon+" "+text))
			continue
		}
		lines = append(lines, "  "+style.Render(icon)+" "+text)
	}
	return lines
}

// fit pads or truncates lines to exactly n entries.
func fit(lines []string, n int) []string {
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines[:n]
}
