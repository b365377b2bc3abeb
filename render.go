package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"
)

const columnGap = 2

// rowRenderer turns a record into the single line shown in a row slot
type rowRenderer struct {
	format   string
	columns  []string
	markdown *glamour.TermRenderer
	cache    *RenderCache
}

func newRowRenderer(format string, columns []string, theme string, cache *RenderCache) *rowRenderer {
	r := &rowRenderer{format: format, columns: columns, cache: cache}

	if format == formatMarkdown {
		if theme == "" {
			theme = defaultTheme
		}
		r.markdown, _ = glamour.NewTermRenderer(
			glamour.WithStandardStyle(theme),
			glamour.WithWordWrap(0),
		)
	}

	return r
}

// Render renders record for a row of the given width, through the cache
func (r *rowRenderer) Render(record string, width int) string {
	if r.cache != nil {
		if row, ok := r.cache.Get(record, width); ok {
			return row
		}
	}

	var row string
	switch r.format {
	case formatMarkdown:
		row = r.renderMarkdown(record)
	case formatJSON:
		row = r.renderColumns(record, width)
	default:
		row = sanitize(record)
	}

	if r.cache != nil {
		r.cache.Set(record, width, row)
	}
	return row
}

// Header returns the column titles for the json format
func (r *rowRenderer) Header(width int) string {
	if r.format != formatJSON {
		return ""
	}
	return joinColumns(r.columns, width, columnHeaderStyle)
}

func (r *rowRenderer) renderMarkdown(record string) string {
	line := sanitize(record)
	if r.markdown == nil {
		return line
	}

	rendered, err := r.markdown.Render(line)
	if err != nil {
		return line
	}

	// Keep as single line
	rendered = strings.TrimSpace(rendered)
	return strings.ReplaceAll(rendered, "\n", " ")
}

func (r *rowRenderer) renderColumns(record string, width int) string {
	if !gjson.Valid(record) {
		return invalidRecordStyle.Render(sanitize(record))
	}

	results := gjson.GetMany(record, r.columns...)
	values := make([]string, len(results))
	for i, res := range results {
		values[i] = sanitize(res.String())
	}

	return joinColumns(values, width, columnStyle)
}

// joinColumns lays values out in equal-width cells, or separated by a
// gap when there is no width to share
func joinColumns(values []string, width int, style lipgloss.Style) string {
	if len(values) == 0 {
		return ""
	}

	if width <= 0 {
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = style.Render(v)
		}
		return strings.Join(cells, strings.Repeat(" ", columnGap))
	}

	cellWidth := max(1, width/len(values)-columnGap)
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = style.Width(cellWidth).MaxWidth(cellWidth).MaxHeight(1).Render(v)
	}
	return strings.Join(cells, strings.Repeat(" ", columnGap))
}

// sanitize flattens a record to one printable line
func sanitize(record string) string {
	record = strings.TrimRight(record, "\r\n")
	record = strings.ReplaceAll(record, "\t", "    ")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		if r < 0x20 && r != 0x1b {
			return -1
		}
		return r
	}, record)
}
