package table

import (
	"iter"
	"math"
)

// IndexForOffset maps a proxy scrollbar offset to a start index in
// [0, maxStart]. The scroll range is the track height minus the proxy
// viewport height; an empty range always maps to 0.
func IndexForOffset(offset, trackHeight, proxyHeight float64, maxStart int) int {
	scrollRange := trackHeight - proxyHeight
	if scrollRange <= 0 || maxStart <= 0 {
		return 0
	}

	index := math.Floor(offset / scrollRange * float64(maxStart))
	if math.IsNaN(index) {
		return 0
	}
	return int(mustBound(index, 0, float64(maxStart)))
}

// OffsetForIndex is the inverse of IndexForOffset: it returns an offset
// that maps back to index. Index 0 maps to the top of the track and
// maxStart to the bottom.
func OffsetForIndex(index int, trackHeight, proxyHeight float64, maxStart int) float64 {
	scrollRange := trackHeight - proxyHeight
	if scrollRange <= 0 || maxStart <= 0 || index <= 0 {
		return 0
	}
	if index >= maxStart {
		return scrollRange
	}

	// Aim at the middle of the index's band so flooring lands on it.
	return (float64(index) + 0.5) / float64(maxStart) * scrollRange
}

// Window is the contiguous range of logical indices visible in one redraw.
type Window struct {
	Start    int
	End      int
	Rows     int
	Count    int
	Reversed bool
}

// NewWindow computes the window for a requested start index. rows is the
// number of rows to render, already limited to count.
func NewWindow(start, rows, count int, reversed bool) Window {
	start = mustBound(start, 0, count-rows)
	return Window{
		Start:    start,
		End:      min(count-1, start+rows-1),
		Rows:     rows,
		Count:    count,
		Reversed: reversed,
	}
}

// Logical maps a display index to the logical record index. Reversed
// windows walk from the end of the store so the newest record is on top.
func (w Window) Logical(display int) int {
	if w.Reversed {
		return w.Count - 1 - w.Start - display
	}
	return w.Start + display
}

// All yields (display index, logical index) pairs in render order.
func (w Window) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for k := 0; k < w.Rows; k++ {
			if !yield(k, w.Logical(k)) {
				return
			}
		}
	}
}
