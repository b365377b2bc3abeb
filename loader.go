package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	// Minimum time before showing the loading screen
	loadingDelay = 200 * time.Millisecond

	progressEvery  = 10000
	readBufferSize = 64 * 1024
)

var errLoadCancelled = errors.New("loading cancelled")

// LoadResult holds the records read from a source
type LoadResult struct {
	Records []string
	Offset  int64  // bytes consumed
	Partial string // unterminated last line, kept back when following
	Error   error
}

// LoadProgress represents progress while reading a source
type LoadProgress struct {
	Source  string
	Bytes   int64
	Total   int64 // 0 when unknown
	Records int
}

// loadProgressMsg is sent to update loading progress
type loadProgressMsg LoadProgress

// loadCompleteMsg is sent when reading is complete
type loadCompleteMsg struct{}

// loaderModel handles the loading screen
type loaderModel struct {
	spinner      spinner.Model
	progress     LoadProgress
	windowWidth  int
	windowHeight int
	startTime    time.Time
	showLoader   bool
	cancelled    bool
}

func newLoaderModel(source string) loaderModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return loaderModel{
		spinner:   s,
		progress:  LoadProgress{Source: source},
		startTime: time.Now(),
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.WindowSize(),
	)
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if !m.showLoader && time.Since(m.startTime) > loadingDelay {
			m.showLoader = true
		}
		return m, cmd

	case loadProgressMsg:
		m.progress = LoadProgress(msg)
		if !m.showLoader && time.Since(m.startTime) > loadingDelay {
			m.showLoader = true
		}
		return m, nil

	case loadCompleteMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m loaderModel) View() string {
	if !m.showLoader {
		return ""
	}

	var b strings.Builder

	dimStyle := lipgloss.NewStyle().
		Foreground(subtleColor)

	countStyle := lipgloss.NewStyle().
		Foreground(highlightColor)

	b.WriteString(titleStyle.Render("vtab") + " ")
	b.WriteString(m.spinner.View() + " ")
	b.WriteString("Reading records...")

	if m.progress.Records > 0 {
		b.WriteString(countStyle.Render(fmt.Sprintf(" %d", m.progress.Records)))
	}
	if m.progress.Total > 0 {
		pct := float64(m.progress.Bytes) / float64(m.progress.Total) * 100
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%.0f%%)", pct)))
	}

	if m.progress.Source != "" {
		source := m.progress.Source
		maxLen := max(20, m.windowWidth-40)
		if len(source) > maxLen {
			source = "..." + source[len(source)-maxLen+3:]
		}
		b.WriteString("\n" + dimStyle.Render(source))
	}

	content := b.String()
	return lipgloss.Place(m.windowWidth, m.windowHeight, lipgloss.Center, lipgloss.Center, content)
}

// readRecords reads one record per line from r. With keepPartial an
// unterminated last line is returned apart instead of as a record.
func readRecords(r io.Reader, keepPartial bool, progress func(bytes int64, records int)) (records []string, offset int64, partial string, err error) {
	br := bufio.NewReaderSize(r, readBufferSize)

	for {
		line, err := br.ReadString('\n')
		offset += int64(len(line))

		switch {
		case err == nil:
			records = append(records, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
			if progress != nil && len(records)%progressEvery == 0 {
				progress(offset, len(records))
			}

		case errors.Is(err, io.EOF):
			if line != "" {
				if keepPartial {
					partial = line
				} else {
					records = append(records, strings.TrimSuffix(line, "\r"))
				}
			}
			return records, offset, partial, nil

		default:
			return records, offset, partial, err
		}
	}
}

// loadSource reads every record from the profile's source
func loadSource(profile *ResolvedProfile, progress func(bytes int64, records int)) LoadResult {
	var r io.Reader = os.Stdin

	if !profile.IsStdin() {
		f, err := os.Open(profile.Source)
		if err != nil {
			return LoadResult{Error: err}
		}
		defer f.Close()
		r = f
	}

	records, offset, partial, err := readRecords(r, profile.Follow, progress)
	return LoadResult{Records: records, Offset: offset, Partial: partial, Error: err}
}

// RunWithLoader reads the source with a loading screen if it takes too long
func RunWithLoader(profile *ResolvedProfile) LoadResult {
	var result LoadResult
	done := make(chan struct{})
	progress := make(chan LoadProgress, 10)

	var total int64
	if !profile.IsStdin() {
		if info, err := os.Stat(profile.Source); err == nil {
			total = info.Size()
		}
	}

	// Start reading in background with progress reporting
	go func() {
		defer close(done)
		defer close(progress)

		result = loadSource(profile, func(bytes int64, records int) {
			select {
			case progress <- LoadProgress{Source: profile.Source, Bytes: bytes, Total: total, Records: records}:
			default:
				// Don't block if channel is full
			}
		})
	}()

	// Wait a bit to see if reading finishes quickly
	select {
	case <-done:
		return result
	case <-time.After(loadingDelay):
		// Continue to show loader
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if profile.IsStdin() {
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(newLoaderModel(profile.Source), opts...)

	// Forward progress to TUI
	go func() {
		for prog := range progress {
			p.Send(loadProgressMsg(prog))
		}
	}()

	// Monitor for completion
	go func() {
		<-done
		p.Send(loadCompleteMsg{})
	}()

	final, err := p.Run()
	if err != nil {
		return LoadResult{Error: err}
	}
	if m, ok := final.(loaderModel); ok && m.cancelled {
		return LoadResult{Error: errLoadCancelled}
	}

	<-done
	return result
}
