package main

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	scrollTrackChar = "│"
	scrollThumbChar = "┃"
	scrollbarWidth  = 1
)

// rowSlot is one visible row of the table
type rowSlot struct {
	content string
	style   lipgloss.Style
}

// screen is the terminal side of the table: the rows area and the proxy
// scrollbar drawn in the rightmost column. It also reports overflow of the
// terminal for tables that fit as many rows as possible.
type screen struct {
	width  int
	height int

	rows      []*rowSlot
	track     float64
	scrollbar bool
}

func newScreen(width, height int) *screen {
	return &screen{width: width, height: height}
}

// SetSize sets the space available to rows, scrollbar column included
func (s *screen) SetSize(width, height int) {
	s.width = max(0, width)
	s.height = max(0, height)
}

func (s *screen) contentWidth() int {
	return max(1, s.width-scrollbarWidth)
}

func (s *screen) NewRow() *rowSlot {
	return &rowSlot{style: rowStyle}
}

func (s *screen) Clear() {
	s.rows = s.rows[:0]
}

func (s *screen) Append(row *rowSlot) {
	s.rows = append(s.rows, row)
}

func (s *screen) Measure(row *rowSlot) float64 {
	return float64(lipgloss.Height(s.line(row)))
}

func (s *screen) ProxyHeight() float64 {
	return float64(s.height)
}

func (s *screen) SetTrack(height float64, visible bool) {
	s.track = height
	s.scrollbar = visible
}

// Overflowing reports whether the rendered rows no longer fit the terminal
func (s *screen) Overflowing() bool {
	used := 0
	for _, row := range s.rows {
		used += lipgloss.Height(s.line(row))
	}
	return used > s.height
}

// line renders a row clipped to the content width. Rows never wrap, so
// every row has the same height.
func (s *screen) line(row *rowSlot) string {
	w := s.contentWidth()
	return row.style.Width(w).MaxWidth(w).MaxHeight(1).Render(row.content)
}

// View renders the rows and the scrollbar for the given scroll position,
// padded to exactly height lines
func (s *screen) View(scrollTop float64) string {
	if s.height <= 0 {
		return ""
	}

	lines := make([]string, 0, s.height)
	for _, row := range s.rows {
		lines = append(lines, strings.Split(s.line(row), "\n")...)
	}
	if len(lines) > s.height {
		lines = lines[:s.height]
	}
	for len(lines) < s.height {
		lines = append(lines, strings.Repeat(" ", s.contentWidth()))
	}

	body := lipgloss.NewStyle().Width(s.contentWidth()).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, body, s.scrollbarView(scrollTop))
}

// scrollbarView draws the proxy scrollbar: the thumb covers the visible
// share of the synthetic track
func (s *screen) scrollbarView(scrollTop float64) string {
	rows := make([]string, s.height)
	if !s.scrollbar || s.track <= 0 {
		for i := range rows {
			rows[i] = " "
		}
		return strings.Join(rows, "\n")
	}

	vh := float64(s.height)
	thumbH := int(math.Max(1, math.Round(vh*vh/s.track)))
	thumbH = min(thumbH, s.height)

	thumbTop := int(math.Round(scrollTop / s.track * vh))
	thumbTop = max(0, min(thumbTop, s.height-thumbH))

	for i := range rows {
		if i >= thumbTop && i < thumbTop+thumbH {
			rows[i] = scrollbarThumbStyle.Render(scrollThumbChar)
		} else {
			rows[i] = scrollbarTrackStyle.Render(scrollTrackChar)
		}
	}
	return strings.Join(rows, "\n")
}

// tickMsg runs the tasks posted since the previous tick
type tickMsg struct{}

// tickQueue defers table work to the next iteration of the bubbletea
// event loop. It implements table.Poster.
type tickQueue struct {
	tasks []func()
	armed bool
}

func (q *tickQueue) Post(task func()) {
	q.tasks = append(q.tasks, task)
}

// Cmd returns the command delivering the next tick, or nil when nothing is
// queued or a tick is already on its way
func (q *tickQueue) Cmd() tea.Cmd {
	if q.armed || len(q.tasks) == 0 {
		return nil
	}
	q.armed = true
	return func() tea.Msg { return tickMsg{} }
}

// Run executes the queued tasks. Tasks posted while running wait for the
// next tick.
func (q *tickQueue) Run() {
	q.armed = false
	tasks := q.tasks
	q.tasks = nil
	for _, task := range tasks {
		task()
	}
}
