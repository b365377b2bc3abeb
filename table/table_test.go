package table

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"
)

type fakeRow struct {
	record  string
	display int
}

// fakeSurface lays rows out at a fixed height. pageHeight > 0 makes it
// report overflow once the rendered rows exceed it.
type fakeSurface struct {
	rows       []*fakeRow
	rowHeight  float64
	proxy      float64
	pageHeight float64

	track    float64
	visible  bool
	measured int
}

func (s *fakeSurface) NewRow() *fakeRow           { return &fakeRow{display: -2} }
func (s *fakeSurface) Clear()                     { s.rows = s.rows[:0] }
func (s *fakeSurface) Append(r *fakeRow)          { s.rows = append(s.rows, r) }
func (s *fakeSurface) ProxyHeight() float64       { return s.proxy }
func (s *fakeSurface) SetTrack(h float64, v bool) { s.track, s.visible = h, v }

func (s *fakeSurface) Measure(r *fakeRow) float64 {
	s.measured++
	return s.rowHeight
}

func (s *fakeSurface) Overflowing() bool {
	return s.pageHeight > 0 && float64(len(s.rows))*s.rowHeight > s.pageHeight
}

func (s *fakeSurface) records() []string {
	var out []string
	for _, r := range s.rows {
		out = append(out, r.record)
	}
	return out
}

func (s *fakeSurface) displays() []int {
	var out []int
	for _, r := range s.rows {
		out = append(out, r.display)
	}
	return out
}

// tickQueue stands in for the host event loop.
type tickQueue struct {
	tasks []func()
}

func (q *tickQueue) Post(task func()) { q.tasks = append(q.tasks, task) }

func (q *tickQueue) Tick() {
	tasks := q.tasks
	q.tasks = nil
	for _, task := range tasks {
		task()
	}
}

type harness struct {
	table   *Table[string, *fakeRow]
	surface *fakeSurface
	queue   *tickQueue
	calls   []int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		surface: &fakeSurface{rowHeight: 20, proxy: 200},
		queue:   &tickQueue{},
	}
	render := func(row *fakeRow, record string, displayIndex int) {
		row.record = record
		row.display = displayIndex
		h.calls = append(h.calls, displayIndex)
	}

	opts = append([]Option{WithCapacity(10), WithOverflowDetector(h.surface)}, opts...)
	tbl, err := New[string, *fakeRow](h.surface, render, h.queue, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.table = tbl
	return h
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + strconv.Itoa(i)
	}
	return out
}

func TestNewValidation(t *testing.T) {
	s := &fakeSurface{}
	render := func(*fakeRow, string, int) {}
	q := &tickQueue{}

	tests := []struct {
		name string
		err  error
		call func() error
	}{
		{"missing surface", ErrMissingCollaborator, func() error {
			_, err := New[string, *fakeRow](nil, render, q, WithCapacity(5))
			return err
		}},
		{"negative capacity", ErrNegativeCapacity, func() error {
			_, err := New[string, *fakeRow](s, render, q, WithCapacity(-5))
			return err
		}},
		{"unbounded without detector", ErrNoOverflowDetector, func() error {
			_, err := New[string, *fakeRow](s, render, q)
			return err
		}},
		{"valid", nil, func() error {
			_, err := New[string, *fakeRow](s, render, q, WithCapacity(0))
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.err) {
				t.Errorf("New() error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestMutationsAreDeferred(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecord("a")

	if len(h.surface.rows) != 0 {
		t.Fatal("AppendRecord rendered synchronously")
	}
	if !h.table.RedrawPending() {
		t.Fatal("AppendRecord did not schedule a redraw")
	}

	h.queue.Tick()
	if got := h.surface.records(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("rendered %v, want [a]", got)
	}
}

func TestCoalescing(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 1000; i++ {
		h.table.AppendRecord(strconv.Itoa(i))
	}

	if len(h.queue.tasks) != 1 {
		t.Fatalf("posted %d ticks, want 1", len(h.queue.tasks))
	}

	h.queue.Tick()
	if got := h.table.Redraws(); got != 1 {
		t.Errorf("Redraws() = %d, want 1", got)
	}
	if got := h.table.Len(); got != 1000 {
		t.Errorf("Len() = %d, want 1000", got)
	}
	if got := len(h.surface.rows); got != 10 {
		t.Errorf("rendered %d rows, want 10", got)
	}
	if want := 200.0 + 990*20; h.surface.track != want {
		t.Errorf("track = %v, want %v", h.surface.track, want)
	}
	if !h.surface.visible {
		t.Error("scrollbar hidden with more records than capacity")
	}
}

func TestRowHeightMeasuredOnce(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords([]string{"a", "b"})
	h.queue.Tick()
	h.table.AppendRecord("c")
	h.queue.Tick()

	if h.surface.measured != 1 {
		t.Errorf("measured %d times, want 1", h.surface.measured)
	}
	if h.calls[0] != -1 {
		t.Errorf("first render call display index = %d, want -1", h.calls[0])
	}
	if got := slices.Index(h.calls[1:], -1); got != -1 {
		t.Errorf("extra measurement render at call %d", got+1)
	}
	if hgt, ok := h.table.RowHeight(); !ok || hgt != 20 {
		t.Errorf("RowHeight() = %v, %v", hgt, ok)
	}
}

func TestReversedDisplay(t *testing.T) {
	h := newHarness(t, WithReversed(true))
	h.table.AppendRecords([]string{"r0", "r1", "r2"})
	h.queue.Tick()

	if got := h.surface.records(); !slices.Equal(got, []string{"r2", "r1", "r0"}) {
		t.Errorf("rendered %v, want [r2 r1 r0]", got)
	}
	if got := h.surface.displays(); !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("display indices %v, want [0 1 2]", got)
	}

	h.table.AppendRecord("r3")
	h.queue.Tick()
	if got := h.surface.records()[0]; got != "r3" {
		t.Errorf("top row = %s, want newest r3", got)
	}
}

func TestScrollMappingBoundary(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords(names("r", 100))
	h.queue.Tick()

	h.table.Scroll(0)
	if got := h.table.StartIndex(); got != 0 {
		t.Errorf("Scroll(0) start = %d, want 0", got)
	}

	h.table.Scroll(h.table.TrackHeight() - h.surface.proxy)
	if got := h.table.StartIndex(); got != 90 {
		t.Errorf("Scroll(max) start = %d, want 90", got)
	}
	if got := h.surface.records()[9]; got != names("r", 100)[99] {
		t.Errorf("last visible row = %s, want the last record", got)
	}

	h.table.Scroll(1e12)
	if got := h.table.StartIndex(); got != 90 {
		t.Errorf("Scroll past max start = %d, want 90", got)
	}
	if got := h.table.ScrollTop(); got != h.table.TrackHeight()-h.surface.proxy {
		t.Errorf("ScrollTop() = %v, want clamped to the scroll range", got)
	}
}

func TestScrollToIndex(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords(names("r", 100))
	h.queue.Tick()

	for _, i := range []int{0, 1, 37, 89, 90, 500} {
		h.table.ScrollToIndex(i)
		want := min(i, 90)
		if got := h.table.StartIndex(); got != want {
			t.Errorf("ScrollToIndex(%d) start = %d, want %d", i, got, want)
		}
	}
}

func TestWheel(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords(names("r", 100))
	h.queue.Tick()

	h.table.Wheel(1)
	if h.table.ScrollTop() != 0 || h.table.StartIndex() != 0 {
		t.Errorf("wheel up at top moved to %v/%d", h.table.ScrollTop(), h.table.StartIndex())
	}

	h.table.Wheel(-1)
	if got := h.table.ScrollTop(); got != DefaultWheelPixels {
		t.Errorf("ScrollTop() = %v, want %v", got, DefaultWheelPixels)
	}
	// 53 / 1800 * 90 = 2.65
	if got := h.table.StartIndex(); got != 2 {
		t.Errorf("StartIndex() = %d, want 2", got)
	}

	h.table.Wheel(0)
	if got := h.table.ScrollTop(); got != DefaultWheelPixels {
		t.Errorf("zero delta moved the scrollbar to %v", got)
	}
}

func TestWheelPixelsOption(t *testing.T) {
	h := newHarness(t, WithWheelPixels(25))
	h.table.AppendRecords(names("r", 100))
	h.queue.Tick()

	// 75 / 1800 * 90 = 3.75
	h.table.Wheel(-3)
	if got := h.table.ScrollTop(); got != 75 {
		t.Errorf("ScrollTop() = %v, want 75", got)
	}
	if got := h.table.StartIndex(); got != 3 {
		t.Errorf("StartIndex() = %d, want 3", got)
	}
}

func TestMutationKeepsPosition(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords(names("r", 100))
	h.queue.Tick()
	h.table.ScrollToIndex(50)

	h.table.AppendRecord("tail")
	h.queue.Tick()
	if got := h.table.StartIndex(); got != 50 {
		t.Errorf("start after append = %d, want 50", got)
	}
	if got := IndexForOffset(h.table.ScrollTop(), h.table.TrackHeight(), h.surface.proxy, 91); got != 50 {
		t.Errorf("scrollbar maps to %d after append, want 50", got)
	}

	for i := 0; i < 60; i++ {
		if err := h.table.RemoveRecord(0); err != nil {
			t.Fatalf("RemoveRecord: %v", err)
		}
	}
	if got := h.table.StartIndex(); got != 31 {
		t.Errorf("start before redraw = %d, want clamped 31", got)
	}
	h.queue.Tick()
	if got := len(h.surface.rows); got != 10 {
		t.Errorf("rendered %d rows, want 10", got)
	}
	if got := h.surface.records()[9]; got != "tail" {
		t.Errorf("last row = %s, want tail", got)
	}
}

func TestInvalidIndexLeavesStateUnchanged(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords([]string{"a", "b"})
	h.queue.Tick()

	if err := h.table.RemoveRecord(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveRecord(2) error = %v", err)
	}
	if err := h.table.InsertRecord(-1, "x"); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("InsertRecord(-1) error = %v", err)
	}
	if h.table.RedrawPending() {
		t.Error("failed call scheduled a redraw")
	}
	if got := h.table.Records(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Records() = %v", got)
	}

	if err := h.table.InsertRecord(1, "x"); err != nil {
		t.Fatalf("InsertRecord(1): %v", err)
	}
	h.queue.Tick()
	if got := h.surface.records(); !slices.Equal(got, []string{"a", "x", "b"}) {
		t.Errorf("rendered %v, want [a x b]", got)
	}
}

func TestPrependRecords(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecord("c")
	h.table.PrependRecord("b")
	h.table.PrependRecords([]string{"y", "a"})
	h.queue.Tick()

	if got := h.surface.records(); !slices.Equal(got, []string{"y", "a", "b", "c"}) {
		t.Errorf("rendered %v", got)
	}
	if h.table.Redraws() != 1 {
		t.Errorf("Redraws() = %d, want 1", h.table.Redraws())
	}
}

func TestClearIdempotent(t *testing.T) {
	h := newHarness(t)
	h.table.Clear()
	h.queue.Tick()

	if h.table.Redraws() != 1 {
		t.Errorf("Redraws() = %d, want 1", h.table.Redraws())
	}
	if len(h.calls) != 0 || h.surface.measured != 0 {
		t.Errorf("empty redraw rendered %d rows and measured %d times", len(h.calls), h.surface.measured)
	}

	h.table.AppendRecords(names("r", 30))
	h.queue.Tick()
	h.table.ScrollToIndex(15)
	h.table.Clear()
	h.table.Clear()
	h.queue.Tick()

	if got := len(h.surface.rows); got != 0 {
		t.Errorf("%d rows left after Clear", got)
	}
	if h.table.StartIndex() != 0 {
		t.Errorf("StartIndex() = %d after Clear", h.table.StartIndex())
	}
	if h.surface.visible {
		t.Error("scrollbar visible on an empty table")
	}
	if h.surface.track != h.surface.proxy {
		t.Errorf("track = %v, want proxy height", h.surface.track)
	}
}

func TestScrollbarVisibility(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords(names("r", 10))
	h.queue.Tick()
	if h.table.ScrollbarVisible() {
		t.Error("scrollbar visible when every record fits")
	}

	h.table.AppendRecord("one more")
	h.queue.Tick()
	if !h.table.ScrollbarVisible() {
		t.Error("scrollbar hidden with one record over capacity")
	}
}

func TestAdaptiveCapacity(t *testing.T) {
	tests := []struct {
		name       string
		pageHeight float64
		want       int
	}{
		{"fits five rows", 100, 5},
		{"floor when one row overflows", 10, minAdaptiveRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, WithCapacity(Unbounded))
			h.surface.pageHeight = tt.pageHeight

			h.table.AppendRecords(names("r", 50))
			h.queue.Tick()

			if got := h.table.Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
			if got := len(h.surface.rows); got != tt.want {
				t.Errorf("rendered %d rows, want %d", got, tt.want)
			}
			if want := 200 + float64(50-tt.want)*20; h.table.TrackHeight() != want {
				t.Errorf("TrackHeight() = %v, want %v", h.table.TrackHeight(), want)
			}
		})
	}
}

func TestAdaptiveCapacityWithoutOverflow(t *testing.T) {
	h := newHarness(t, WithCapacity(Unbounded))
	h.surface.pageHeight = 1000

	h.table.AppendRecords(names("r", 4))
	h.queue.Tick()

	if h.table.Capacity() != Unbounded {
		t.Errorf("Capacity() = %d, want Unbounded", h.table.Capacity())
	}
	if got := len(h.surface.rows); got != 4 {
		t.Errorf("rendered %d rows, want 4", got)
	}
	if h.table.ScrollbarVisible() {
		t.Error("scrollbar visible while everything fits")
	}
}

func TestResizeRemeasuresAdaptiveCapacity(t *testing.T) {
	h := newHarness(t, WithCapacity(Unbounded))
	h.surface.pageHeight = 100
	h.table.AppendRecords(names("r", 50))
	h.queue.Tick()
	h.table.ScrollToIndex(20)

	h.surface.pageHeight = 200
	h.table.Resize()
	if h.table.Capacity() != Unbounded {
		t.Fatal("Resize did not reset the adaptive capacity")
	}
	if got := h.table.StartIndex(); got != 0 {
		t.Errorf("StartIndex() = %d while capacity is unbounded", got)
	}

	h.queue.Tick()
	if got := h.table.Capacity(); got != 10 {
		t.Errorf("Capacity() = %d after resize, want 10", got)
	}
	if got := h.surface.measured; got != 2 {
		t.Errorf("measured %d times, want 2", got)
	}
	if got := h.table.StartIndex(); got != 20 {
		t.Errorf("StartIndex() = %d after resize, want 20", got)
	}
}

func TestResizeFixedCapacity(t *testing.T) {
	h := newHarness(t)
	h.table.AppendRecords(names("r", 50))
	h.queue.Tick()

	h.table.Resize()
	h.queue.Tick()
	if h.table.Capacity() != 10 || h.surface.measured != 1 {
		t.Errorf("fixed capacity resize: capacity %d, measured %d", h.table.Capacity(), h.surface.measured)
	}
}

func TestRequestDuringRedrawGetsNextTick(t *testing.T) {
	q := &tickQueue{}
	s := NewScheduler(q)

	runs := 0
	var fn func()
	fn = func() {
		runs++
		if runs == 1 {
			s.Request(fn)
		}
	}

	s.Request(fn)
	q.Tick()
	if len(q.tasks) != 1 {
		t.Fatalf("request made during a run posted %d ticks, want 1", len(q.tasks))
	}
	q.Tick()
	if runs != 2 || s.Runs() != 2 {
		t.Errorf("runs = %d, Runs() = %d, want 2", runs, s.Runs())
	}
}

func TestInvariantsUnderRandomMutation(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		h := newHarness(t, WithReversed(reversed))
		rng := rand.New(rand.NewPCG(7, 11))

		check := func(step int) {
			n := h.table.Len()
			maxStart := max(0, n-10)
			if s := h.table.StartIndex(); s < 0 || s > maxStart {
				t.Fatalf("step %d: start %d outside [0, %d]", step, s, maxStart)
			}
		}

		for step := 0; step < 2000; step++ {
			n := h.table.Len()
			switch op := rng.IntN(9); {
			case op == 0:
				h.table.AppendRecord(strconv.Itoa(step))
			case op == 1:
				h.table.AppendRecords(names("a", rng.IntN(30)))
			case op == 2:
				h.table.PrependRecords(names("p", rng.IntN(5)))
			case op == 3:
				_ = h.table.InsertRecord(rng.IntN(n+1), "i")
			case op == 4 && n > 0:
				_ = h.table.RemoveRecord(rng.IntN(n))
			case op == 5:
				h.table.Scroll(rng.Float64() * (h.table.TrackHeight() + 100))
			case op == 6:
				h.table.Wheel(float64(rng.IntN(7) - 3))
			case op == 7 && rng.IntN(20) == 0:
				h.table.Clear()
			default:
				h.queue.Tick()
				if got, want := len(h.surface.rows), min(10, h.table.Len()); got != want {
					t.Fatalf("step %d: rendered %d rows, want %d", step, got, want)
				}
			}
			check(step)
		}
	}
}
