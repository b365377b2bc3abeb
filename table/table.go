// Package table renders very large ordered record lists inside a fixed
// viewport. Only the records scrolled into view are handed to the row
// renderer; a proxy scrollbar with a synthetic track stands in for the rest.
//
// The package never touches a real display. The host supplies a Surface
// (the parent container and proxy scrollbar), a RenderFunc (the row
// renderer) and a Poster (its event loop's "next tick"). Every method must
// be called from that single event loop.
package table

import (
	"log/slog"
)

// DefaultWheelPixels is the proxy scrollbar distance of one wheel notch.
const DefaultWheelPixels = 53

// Surface is the host side of a table: the container rows are placed in
// and the proxy scrollbar next to it. R is the host's row slot type.
type Surface[R any] interface {
	// NewRow creates an empty row slot from the row template.
	NewRow() R
	// Clear removes every row from the container.
	Clear()
	// Append inserts a populated row at the bottom of the container.
	Append(row R)
	// Measure inserts row hidden, reads its height and discards it.
	Measure(row R) float64
	// ProxyHeight is the proxy scrollbar's own viewport height.
	ProxyHeight() float64
	// SetTrack sizes the proxy scrollbar track and toggles its visibility.
	SetTrack(height float64, visible bool)
}

// RenderFunc populates row with record. displayIndex is the row's position
// in render order, or -1 for the hidden height measurement.
type RenderFunc[T, R any] func(row R, record T, displayIndex int)

// OverflowDetector reports whether the host page overflowed its viewport.
// It drives Unbounded capacity.
type OverflowDetector interface {
	Overflowing() bool
}

// OverflowFunc adapts a function to OverflowDetector.
type OverflowFunc func() bool

func (f OverflowFunc) Overflowing() bool { return f() }

// InputNormalizer converts a wheel delta, in notches, to proxy scrollbar
// distance.
type InputNormalizer interface {
	Normalize(delta float64) float64
}

// WheelPixels is an InputNormalizer with a fixed distance per notch.
type WheelPixels float64

func (p WheelPixels) Normalize(delta float64) float64 {
	return delta * float64(p)
}

type config struct {
	capacity int
	reversed bool
	overflow OverflowDetector
	input    InputNormalizer
	logger   *slog.Logger
}

// Option configures a Table.
type Option func(*config)

// WithCapacity sets the visible row capacity, a row count or Unbounded.
func WithCapacity(rows int) Option {
	return func(c *config) { c.capacity = rows }
}

// WithReversed renders the newest record at the top.
func WithReversed(reversed bool) Option {
	return func(c *config) { c.reversed = reversed }
}

// WithOverflowDetector installs the page overflow signal used by Unbounded.
func WithOverflowDetector(d OverflowDetector) Option {
	return func(c *config) { c.overflow = d }
}

// WithInputNormalizer replaces the wheel translation.
func WithInputNormalizer(n InputNormalizer) Option {
	return func(c *config) { c.input = n }
}

// WithWheelPixels sets the proxy scrollbar distance of one wheel notch.
func WithWheelPixels(px float64) Option {
	return func(c *config) { c.input = WheelPixels(px) }
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Table is the windowing engine. T is the record type, R the host's row
// slot type.
type Table[T, R any] struct {
	store    Store[T]
	geometry Geometry
	sched    *Scheduler

	surface  Surface[R]
	render   RenderFunc[T, R]
	overflow OverflowDetector
	input    InputNormalizer
	reversed bool
	log      *slog.Logger

	start     int
	resume    int
	scrollTop float64
	track     float64
	scrollbar bool
}

// New returns a table drawing into surface through render. Redraws are
// deferred through poster.
func New[T, R any](surface Surface[R], render RenderFunc[T, R], poster Poster, opts ...Option) (*Table[T, R], error) {
	cfg := config{
		capacity: Unbounded,
		input:    WheelPixels(DefaultWheelPixels),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if surface == nil || render == nil || poster == nil {
		return nil, ErrMissingCollaborator
	}
	if cfg.capacity < 0 && cfg.capacity != Unbounded {
		return nil, ErrNegativeCapacity
	}
	if cfg.capacity == Unbounded && cfg.overflow == nil {
		return nil, ErrNoOverflowDetector
	}
	if cfg.input == nil {
		cfg.input = WheelPixels(DefaultWheelPixels)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	return &Table[T, R]{
		geometry: NewGeometry(cfg.capacity),
		sched:    NewScheduler(poster),
		surface:  surface,
		render:   render,
		overflow: cfg.overflow,
		input:    cfg.input,
		reversed: cfg.reversed,
		log:      cfg.logger,
		resume:   -1,
	}, nil
}

// AppendRecord adds record at the end.
func (t *Table[T, R]) AppendRecord(record T) {
	t.store.Append(record)
	t.changed()
}

// AppendRecords adds records at the end, in order.
func (t *Table[T, R]) AppendRecords(records []T) {
	t.store.AppendBatch(records)
	t.changed()
}

// PrependRecord adds record at the front.
func (t *Table[T, R]) PrependRecord(record T) {
	t.store.Prepend(record)
	t.changed()
}

// PrependRecords adds records at the front, keeping their order.
func (t *Table[T, R]) PrependRecords(records []T) {
	t.store.PrependBatch(records)
	t.changed()
}

// InsertRecord places record at logical index. Nothing changes and no
// redraw is scheduled when index is out of range.
func (t *Table[T, R]) InsertRecord(index int, record T) error {
	if err := t.store.InsertAt(index, record); err != nil {
		return err
	}
	t.changed()
	return nil
}

// RemoveRecord deletes the record at logical index. Nothing changes and no
// redraw is scheduled when index is out of range.
func (t *Table[T, R]) RemoveRecord(index int) error {
	if err := t.store.RemoveAt(index); err != nil {
		return err
	}
	t.changed()
	return nil
}

// Clear drops every record and scrolls back to the top.
func (t *Table[T, R]) Clear() {
	t.store.Clear()
	t.start = 0
	t.resume = -1
	t.changed()
}

// Scroll handles a proxy scrollbar position change and redraws
// immediately at the mapped start index.
func (t *Table[T, R]) Scroll(offset float64) {
	t.scrollTop = mustBound(offset, 0, t.scrollRange())

	t.measure()

	n := t.store.Len()
	index := IndexForOffset(t.scrollTop, t.track, t.surface.ProxyHeight(), t.geometry.MaxStartIndex(n))
	t.display(index)
}

// ScrollToIndex moves the proxy scrollbar so that index becomes the first
// visible record.
func (t *Table[T, R]) ScrollToIndex(index int) {
	n := t.store.Len()
	maxStart := t.geometry.MaxStartIndex(n)
	index = mustBound(index, 0, maxStart)
	t.Scroll(OffsetForIndex(index, t.track, t.surface.ProxyHeight(), maxStart))
}

// Wheel translates a wheel delta in notches into a proxy scrollbar move.
// Positive deltas scroll towards the top, as wheel-up does.
func (t *Table[T, R]) Wheel(delta float64) {
	if delta == 0 {
		return
	}
	t.Scroll(t.scrollTop - t.input.Normalize(delta))
}

// Resize reacts to the host window changing size. An adaptive capacity is
// measured again on the next redraw.
func (t *Table[T, R]) Resize() {
	if t.geometry.Adaptive() {
		// Capacity is unknown until remeasured; keep the position to
		// return to once it is.
		if t.resume < 0 {
			t.resume = t.start
		}
		t.geometry.Reset()
		t.start = 0
	}
	t.requestRedraw()
}

// Len returns the number of records.
func (t *Table[T, R]) Len() int {
	return t.store.Len()
}

// Records returns a copy of the records in logical order.
func (t *Table[T, R]) Records() []T {
	return t.store.Records()
}

// StartIndex returns the logical index of the first visible record.
func (t *Table[T, R]) StartIndex() int {
	return t.start
}

// Window returns the range a redraw at the current start index covers.
func (t *Table[T, R]) Window() Window {
	n := t.store.Len()
	return NewWindow(t.start, t.geometry.Rows(n), n, t.reversed)
}

// Capacity returns the effective visible row capacity, Unbounded while
// an adaptive capacity has not been measured.
func (t *Table[T, R]) Capacity() int {
	return t.geometry.Capacity()
}

// RowHeight returns the measured row height and whether it is known.
func (t *Table[T, R]) RowHeight() (float64, bool) {
	return t.geometry.RowHeight()
}

// TrackHeight returns the synthetic track height of the last redraw.
func (t *Table[T, R]) TrackHeight() float64 {
	return t.track
}

// ScrollTop returns the proxy scrollbar position.
func (t *Table[T, R]) ScrollTop() float64 {
	return t.scrollTop
}

// ScrollbarVisible reports whether the last redraw showed the scrollbar.
func (t *Table[T, R]) ScrollbarVisible() bool {
	return t.scrollbar
}

// Reversed reports whether the newest record is drawn on top.
func (t *Table[T, R]) Reversed() bool {
	return t.reversed
}

// Redraws returns how many scheduled redraws have run.
func (t *Table[T, R]) Redraws() int {
	return t.sched.Runs()
}

// RedrawPending reports whether a redraw is waiting for the next tick.
func (t *Table[T, R]) RedrawPending() bool {
	return t.sched.Pending()
}

func (t *Table[T, R]) changed() {
	t.start = mustBound(t.start, 0, t.geometry.MaxStartIndex(t.store.Len()))
	t.requestRedraw()
}

func (t *Table[T, R]) requestRedraw() {
	t.sched.Request(t.redraw)
}

func (t *Table[T, R]) scrollRange() float64 {
	return max(0, t.track-t.surface.ProxyHeight())
}

// redraw is the deferred, mutation-driven render at the current start index.
func (t *Table[T, R]) redraw() {
	n := t.store.Len()
	if n == 0 && !t.geometry.EverMeasured() {
		return
	}

	t.measure()

	start := t.start
	if t.resume >= 0 {
		start, t.resume = t.resume, -1
	}
	t.display(start)

	proxy := t.surface.ProxyHeight()
	t.track = t.geometry.TrackHeight(n, proxy)
	t.scrollbar = !t.geometry.Unbounded() && n > t.geometry.Capacity()
	t.surface.SetTrack(t.track, t.scrollbar)

	maxStart := t.geometry.MaxStartIndex(n)
	t.scrollTop = mustBound(t.scrollTop, 0, t.scrollRange())
	if IndexForOffset(t.scrollTop, t.track, proxy, maxStart) != t.start {
		t.scrollTop = OffsetForIndex(t.start, t.track, proxy, maxStart)
	}

	t.log.Debug("redraw",
		"records", n,
		"start", t.start,
		"capacity", t.geometry.Capacity(),
		"track", t.track,
		"scrollbar", t.scrollbar,
	)
}

// measure caches the row height from the first record, once. Every row
// is assumed to be as tall as that one.
func (t *Table[T, R]) measure() {
	if _, ok := t.geometry.RowHeight(); ok || t.store.Len() == 0 {
		return
	}

	row := t.surface.NewRow()
	t.render(row, t.store.At(0), -1)
	t.geometry.SetRowHeight(t.surface.Measure(row))
}

// display renders the window starting at start. With an adaptive capacity
// it stops at the first row that overflows the host, fixes the capacity
// and renders again.
func (t *Table[T, R]) display(start int) {
	for {
		t.surface.Clear()

		n := t.store.Len()
		w := NewWindow(start, t.geometry.Rows(n), n, t.reversed)
		t.start = w.Start

		settled := false
		for k, i := range w.All() {
			row := t.surface.NewRow()
			t.render(row, t.store.At(i), k)
			t.surface.Append(row)

			if t.geometry.Unbounded() && t.overflow.Overflowing() {
				capacity := t.geometry.Settle(k)
				t.log.Debug("capacity settled", "rows", capacity)
				settled = true
				break
			}
		}

		if !settled {
			return
		}
	}
}
