package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/savioxavier/termlink"

	"github.com/elcuervo/vtab/table"
)

const (
	defaultWindowHeight = 24
	defaultWindowWidth  = 80
	titleLines          = 1
	footerLines         = 1
)

type recordTable = table.Table[string, *rowSlot]

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+f", " "), key.WithHelp("pgdn", "page down")),
	Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
	Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// model is the BubbleTea model hosting the record table
type model struct {
	profile  *ResolvedProfile
	table    *recordTable
	screen   *screen
	queue    *tickQueue
	renderer *rowRenderer
	keys     keyMap
	help     help.Model

	// Follow mode
	tail      *Tail
	watcher   *Watcher
	debouncer *Debouncer

	log          *slog.Logger
	windowWidth  int
	windowHeight int
	dragging     bool
	quitting     bool
	followErr    error
}

func newModel(profile *ResolvedProfile, records []string, tail *Tail, watcher *Watcher, debouncer *Debouncer, logger *slog.Logger) (model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := model{
		profile:      profile,
		screen:       newScreen(defaultWindowWidth, defaultWindowHeight),
		queue:        &tickQueue{},
		renderer:     newRowRenderer(profile.Format, profile.Columns, profile.Theme, NewRenderCache()),
		keys:         defaultKeys,
		help:         help.New(),
		tail:         tail,
		watcher:      watcher,
		debouncer:    debouncer,
		log:          logger,
		windowWidth:  defaultWindowWidth,
		windowHeight: defaultWindowHeight,
	}
	m.screen.SetSize(m.windowWidth, m.rowsHeight())

	scr, renderer := m.screen, m.renderer
	render := func(row *rowSlot, record string, displayIndex int) {
		row.content = renderer.Render(record, scr.contentWidth())
		if displayIndex%2 == 1 {
			row.style = stripeStyle
		}
	}

	capacity := table.Unbounded
	if profile.VisibleRows > 0 {
		capacity = profile.VisibleRows
	}

	tbl, err := table.New[string, *rowSlot](scr, render, m.queue,
		table.WithCapacity(capacity),
		table.WithReversed(profile.Reversed),
		table.WithOverflowDetector(scr),
		table.WithWheelPixels(float64(profile.WheelLines)),
		table.WithLogger(logger),
	)
	if err != nil {
		return model{}, err
	}

	tbl.AppendRecords(records)
	m.table = tbl
	return m, nil
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.WindowSize(), m.queue.Cmd()}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.WatchCmd())
	}
	return tea.Batch(cmds...)
}

// chromeLines is the number of lines taken by bars around the rows
func (m model) chromeLines() int {
	lines := titleLines + footerLines
	if m.profile.Format == formatJSON {
		lines++
	}
	return lines
}

func (m model) rowsHeight() int {
	return max(0, m.windowHeight-m.chromeLines())
}

// rowsTop is the screen line of the first row
func (m model) rowsTop() int {
	return m.chromeLines() - footerLines
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	// Table work posted during this update runs on the next tick
	return next, tea.Batch(cmd, m.queue.Cmd())
}

func (m model) update(msg tea.Msg) (model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowHeight = msg.Height
		m.windowWidth = msg.Width
		m.help.Width = msg.Width
		m.screen.SetSize(msg.Width, m.rowsHeight())
		m.table.Resize()
		return m, nil

	case tickMsg:
		m.queue.Run()
		return m, nil

	case FileChangeMsg:
		if !msg.Deleted && m.debouncer != nil {
			m.debouncer.Trigger()
		}
		if m.watcher != nil {
			return m, m.watcher.WatchCmd()
		}
		return m, nil

	case DebouncedRefreshMsg:
		m.readAppended()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			m.table.ScrollToIndex(m.table.StartIndex() - 1)

		case key.Matches(msg, m.keys.Down):
			m.table.ScrollToIndex(m.table.StartIndex() + 1)

		case key.Matches(msg, m.keys.PageUp):
			m.table.ScrollToIndex(m.table.StartIndex() - m.pageRows())

		case key.Matches(msg, m.keys.PageDown):
			m.table.ScrollToIndex(m.table.StartIndex() + m.pageRows())

		case key.Matches(msg, m.keys.Top):
			m.table.ScrollToIndex(0)

		case key.Matches(msg, m.keys.Bottom):
			m.table.ScrollToIndex(m.table.Len())
		}
	}

	return m, nil
}

func (m model) pageRows() int {
	return max(1, m.table.Window().Rows)
}

// handleMouse scrolls on the wheel and lets the scrollbar column be
// clicked or dragged like a real scrollbar
func (m *model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Action == tea.MouseActionPress {
			m.table.Wheel(1)
		}
		return
	case tea.MouseButtonWheelDown:
		if msg.Action == tea.MouseActionPress {
			m.table.Wheel(-1)
		}
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.dragging = msg.Button == tea.MouseButtonLeft && msg.X >= m.windowWidth-scrollbarWidth
	case tea.MouseActionRelease:
		m.dragging = false
		return
	}

	if !m.dragging || !m.table.ScrollbarVisible() {
		return
	}

	height := m.screen.ProxyHeight()
	if height <= 0 {
		return
	}
	row := float64(msg.Y - m.rowsTop())
	m.table.Scroll(row / height * m.table.TrackHeight())
}

// readAppended appends the lines written to the followed file since the
// last read. A truncated file replaces every record.
func (m *model) readAppended() {
	if m.tail == nil {
		return
	}

	lines, truncated, err := m.tail.Read()
	m.followErr = err
	if err != nil {
		m.log.Warn("follow read failed", "source", m.profile.Source, "err", err)
		return
	}

	if truncated {
		m.log.Info("source truncated", "source", m.profile.Source)
		m.table.Clear()
	}
	if len(lines) > 0 {
		m.table.AppendRecords(lines)
	}
	m.log.Debug("follow", "appended", len(lines), "records", m.table.Len())
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTitleBar() + "\n")

	if header := m.renderer.Header(m.screen.contentWidth()); header != "" {
		b.WriteString(header + "\n")
	}

	if m.table.Len() == 0 {
		empty := emptyStyle.Render("No records.")
		b.WriteString(lipgloss.Place(m.windowWidth, m.rowsHeight(), lipgloss.Center, lipgloss.Center, empty))
	} else {
		b.WriteString(m.screen.View(m.table.ScrollTop()))
	}

	b.WriteString("\n" + m.renderFooterSplit(m.help.ShortHelpView(m.keys.ShortHelp()), m.positionInfo()))
	return b.String()
}

func (m model) renderTitleBar() string {
	name := m.profile.Name
	if name == "" {
		name = m.profile.Source
		if !m.profile.IsStdin() {
			name = filepath.Base(m.profile.Source)
		}
	}

	if !m.profile.IsStdin() && termlink.SupportsHyperlinks() {
		name = termlink.Link(name, "file://"+m.profile.Source)
	}

	left := titleStyle.Render(" vtab ") + titleNameStyle.Render(name+" ")
	right := ""
	switch {
	case m.followErr != nil:
		right = errorStyle.Render(m.followErr.Error())
	case m.tail != nil:
		right = followStyle.Render("FOLLOW")
	}
	return m.renderFooterSplit(left, right)
}

// positionInfo describes the visible rows, e.g. "[11-20 of 100]"
func (m model) positionInfo() string {
	n := m.table.Len()
	w := m.table.Window()
	if n == 0 || w.Rows == 0 {
		return fmt.Sprintf("[%d]", n)
	}
	return fmt.Sprintf("[%d-%d of %d]", w.Start+1, w.Start+w.Rows, n)
}

func (m model) renderFooterSplit(left, right string) string {
	if left == "" && right == "" {
		return helpBarStyle.Width(m.windowWidth).Render("")
	}

	if right != "" {
		right = helpBarInfoStyle.Render(right)
	}

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	spacing := m.windowWidth - leftWidth - rightWidth
	if spacing < 1 {
		spacing = 1
	}

	gap := helpBarStyle.Render(strings.Repeat(" ", spacing))
	return left + gap + right
}
