package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// BackLabel is the synthetic first entry of every menu
const BackLabel = "← Back"

const (
	defaultVisibleRows = 10
	// rows used by border, padding, title, spacing and help line
	chromeRows = 8
)

type selectKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var selectKeys = selectKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc/q", "back")),
}

// selectModel is a single-highlight list. The cursor clamps at both ends.
type selectModel struct {
	title     string
	items     []string
	cursor    int
	width     int
	height    int
	chosen    bool
	cancelled bool
}

func newSelectModel(title string, items []string) selectModel {
	return selectModel{title: title, items: items}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, selectKeys.Cancel):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, selectKeys.Choose):
			if len(m.items) == 0 {
				return m, nil
			}
			m.chosen = true
			return m, tea.Quit
		case key.Matches(msg, selectKeys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, selectKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

// visibleRows is the number of items shown at once. When the list scrolls,
// two rows go to the "more" indicators.
func (m selectModel) visibleRows() int {
	if m.height == 0 {
		return defaultVisibleRows
	}
	rows := m.height - chromeRows
	if len(m.items) > rows {
		rows -= 2
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m selectModel) View() string {
	if m.chosen || m.cancelled {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n\n")

	start, end := calcScrollWindow(m.cursor, len(m.items), m.visibleRows())
	if start > 0 {
		s.WriteString(dimStyle.Render("  ↑ more"))
		s.WriteString("\n")
	}
	for i := start; i < end; i++ {
		cursor := "  "
		item := m.items[i]
		if m.cursor == i {
			cursor = cursorStyle.Render("▸ ")
			item = selectedStyle.Render(item)
		}
		s.WriteString(fmt.Sprintf("%s%s\n", cursor, item))
	}
	if end < len(m.items) {
		s.WriteString(dimStyle.Render("  ↓ more"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(dimStyle.Render("↑/↓: navigate • enter: select • esc/q: back"))

	// terminal width - 4 for safety margin, fallback to 80
	width := m.width - 4
	if width < 40 {
		width = 80
	}
	return borderStyle.Width(width).Render(s.String())
}

// calcScrollWindow returns the [start, end) slice of a list of listLen items
// that keeps cursor visible with at most maxVisible rows.
func calcScrollWindow(cursor, listLen, maxVisible int) (start, end int) {
	scrollCursor := cursor
	if scrollCursor >= listLen {
		scrollCursor = listLen - 1
	}
	if scrollCursor < 0 {
		scrollCursor = 0
	}

	start = 0
	if scrollCursor >= maxVisible {
		start = scrollCursor - maxVisible + 1
	}
	end = start + maxVisible
	if end > listLen {
		end = listLen
	}
	return start, end
}

// Selector shows menus on a terminal, one bubbletea program per menu.
// Each program owns raw mode and the alternate screen only while it runs,
// so the terminal is back to normal whenever Choose returns, error or not.
type Selector struct {
	in  io.Reader
	out io.Writer
}

// NewSelector returns a Selector reading keys from in and drawing to out
func NewSelector(in io.Reader, out io.Writer) *Selector {
	return &Selector{in: in, out: out}
}

// Choose shows title and items and blocks until the user picks one.
// ok is false when the user backed out (esc, q, ctrl+c) or items is empty.
func (s *Selector) Choose(ctx context.Context, title string, items []string) (index int, ok bool, err error) {
	if len(items) == 0 {
		return 0, false, nil
	}

	p := tea.NewProgram(
		newSelectModel(title, items),
		tea.WithContext(ctx),
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return 0, false, fmt.Errorf("running menu: %w", err)
	}

	m, _ := final.(selectModel)
	if !m.chosen {
		return 0, false, nil
	}
	return m.cursor, true, nil
}
