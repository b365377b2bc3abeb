package table

// Unbounded is the capacity sentinel that asks the table to fit as many
// rows as the host surface allows before it overflows.
const Unbounded = -1

// minAdaptiveRows keeps an adaptively sized table from looking empty.
const minAdaptiveRows = 3

// Geometry derives row height, visible capacity and synthetic track height.
type Geometry struct {
	configured int
	capacity   int

	rowHeight    float64
	hasRowHeight bool
	everMeasured bool
}

// NewGeometry returns geometry for the configured capacity, which is either
// Unbounded or a non-negative row count.
func NewGeometry(capacity int) Geometry {
	return Geometry{configured: capacity, capacity: capacity}
}

// Capacity returns the effective capacity, Unbounded while still adapting.
func (g *Geometry) Capacity() int {
	return g.capacity
}

// Adaptive reports whether capacity was configured as Unbounded.
func (g *Geometry) Adaptive() bool {
	return g.configured == Unbounded
}

// Unbounded reports whether the effective capacity is not yet fixed.
func (g *Geometry) Unbounded() bool {
	return g.capacity == Unbounded
}

// RowHeight returns the cached row height and whether one is known.
func (g *Geometry) RowHeight() (float64, bool) {
	return g.rowHeight, g.hasRowHeight
}

// SetRowHeight caches the measured row height.
func (g *Geometry) SetRowHeight(h float64) {
	g.rowHeight = h
	g.hasRowHeight = true
	g.everMeasured = true
}

// EverMeasured reports whether a row height was measured at least once.
func (g *Geometry) EverMeasured() bool {
	return g.everMeasured
}

// Settle fixes an adaptive capacity once the host overflowed after
// rendered rows, never below minAdaptiveRows.
func (g *Geometry) Settle(rendered int) int {
	g.capacity = max(rendered, minAdaptiveRows)
	return g.capacity
}

// Reset forgets an adaptive capacity and the cached row height so both are
// measured again on the next redraw. Fixed capacities are left untouched.
func (g *Geometry) Reset() {
	if !g.Adaptive() {
		return
	}
	g.capacity = Unbounded
	g.rowHeight = 0
	g.hasRowHeight = false
}

// Rows returns how many rows a redraw renders for n records.
func (g *Geometry) Rows(n int) int {
	if g.Unbounded() {
		return n
	}
	return min(g.capacity, n)
}

// MaxStartIndex returns the largest valid start index for n records.
func (g *Geometry) MaxStartIndex(n int) int {
	return n - g.Rows(n)
}

// TrackHeight returns the synthetic scroll track height: the proxy
// viewport plus one row height per record that does not fit.
func (g *Geometry) TrackHeight(n int, proxyHeight float64) float64 {
	return proxyHeight + float64(g.MaxStartIndex(n))*g.rowHeight
}
