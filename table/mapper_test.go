package table

import (
	"slices"
	"testing"
)

func TestIndexForOffset(t *testing.T) {
	tests := []struct {
		name     string
		offset   float64
		track    float64
		proxy    float64
		maxStart int
		want     int
	}{
		{"top", 0, 1100, 200, 90, 0},
		{"bottom", 900, 1100, 200, 90, 90},
		{"middle", 450, 1100, 200, 90, 45},
		{"past bottom clamps", 5000, 1100, 200, 90, 90},
		{"negative clamps", -10, 1100, 200, 90, 0},
		{"no scroll range", 50, 200, 200, 0, 0},
		{"track shorter than proxy", 50, 100, 200, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IndexForOffset(tt.offset, tt.track, tt.proxy, tt.maxStart); got != tt.want {
				t.Errorf("IndexForOffset(%v) = %d, want %d", tt.offset, got, tt.want)
			}
		})
	}
}

func TestOffsetForIndexRoundTrip(t *testing.T) {
	const (
		proxy    = 200.0
		maxStart = 997
	)
	track := proxy + float64(maxStart)*17

	for i := 0; i <= maxStart; i++ {
		offset := OffsetForIndex(i, track, proxy, maxStart)
		if got := IndexForOffset(offset, track, proxy, maxStart); got != i {
			t.Fatalf("IndexForOffset(OffsetForIndex(%d)) = %d", i, got)
		}
	}

	if got := OffsetForIndex(0, track, proxy, maxStart); got != 0 {
		t.Errorf("OffsetForIndex(0) = %v, want 0", got)
	}
	if got := OffsetForIndex(maxStart, track, proxy, maxStart); got != track-proxy {
		t.Errorf("OffsetForIndex(max) = %v, want %v", got, track-proxy)
	}
}

func collect(w Window) (display, logical []int) {
	for k, i := range w.All() {
		display = append(display, k)
		logical = append(logical, i)
	}
	return display, logical
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name        string
		start       int
		rows        int
		count       int
		reversed    bool
		wantStart   int
		wantLogical []int
	}{
		{"forward", 2, 3, 10, false, 2, []int{2, 3, 4}},
		{"forward clamps start", 9, 3, 10, false, 7, []int{7, 8, 9}},
		{"reversed full", 0, 3, 3, true, 0, []int{2, 1, 0}},
		{"reversed scrolled", 2, 3, 10, true, 2, []int{7, 6, 5}},
		{"empty", 4, 0, 0, false, 0, nil},
		{"zero capacity", 3, 0, 5, false, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow(tt.start, tt.rows, tt.count, tt.reversed)
			if w.Start != tt.wantStart {
				t.Errorf("Start = %d, want %d", w.Start, tt.wantStart)
			}

			display, logical := collect(w)
			if !slices.Equal(logical, tt.wantLogical) {
				t.Errorf("logical = %v, want %v", logical, tt.wantLogical)
			}
			for k, d := range display {
				if d != k {
					t.Errorf("display index %d at position %d", d, k)
				}
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	g := NewGeometry(10)
	g.SetRowHeight(20)

	if got := g.MaxStartIndex(100); got != 90 {
		t.Errorf("MaxStartIndex(100) = %d, want 90", got)
	}
	if got := g.MaxStartIndex(4); got != 0 {
		t.Errorf("MaxStartIndex(4) = %d, want 0", got)
	}
	if got := g.TrackHeight(100, 200); got != 200+90*20 {
		t.Errorf("TrackHeight = %v, want %v", got, 200+90*20)
	}

	g.Reset()
	if _, ok := g.RowHeight(); !ok {
		t.Error("Reset dropped the row height of a fixed capacity")
	}

	adaptive := NewGeometry(Unbounded)
	if got := adaptive.Rows(1000); got != 1000 {
		t.Errorf("unbounded Rows(1000) = %d", got)
	}
	if got := adaptive.Settle(0); got != minAdaptiveRows {
		t.Errorf("Settle(0) = %d, want %d", got, minAdaptiveRows)
	}
	if got := adaptive.Settle(12); got != 12 {
		t.Errorf("Settle(12) = %d, want 12", got)
	}
	adaptive.SetRowHeight(3)
	adaptive.Reset()
	if !adaptive.Unbounded() {
		t.Error("Reset did not restore Unbounded")
	}
	if _, ok := adaptive.RowHeight(); ok {
		t.Error("Reset kept the row height of an adaptive capacity")
	}
	if !adaptive.EverMeasured() {
		t.Error("EverMeasured forgotten by Reset")
	}
}
