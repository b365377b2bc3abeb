package table

// Poster defers a task to the next tick of the host's event loop.
type Poster interface {
	Post(task func())
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(task func())

func (f PosterFunc) Post(task func()) { f(task) }

// Scheduler coalesces redraw requests: any number of requests before the
// next tick run the redraw once.
type Scheduler struct {
	poster  Poster
	pending bool
	runs    int
}

// NewScheduler returns a scheduler posting to p.
func NewScheduler(p Poster) *Scheduler {
	return &Scheduler{poster: p}
}

// Request schedules fn unless a run is already pending. It reports whether
// a new tick was posted.
func (s *Scheduler) Request(fn func()) bool {
	if s.pending {
		return false
	}

	s.pending = true
	s.poster.Post(func() {
		// Cleared before running so requests made by fn get their own tick.
		s.pending = false
		s.runs++
		fn()
	})
	return true
}

// Pending reports whether a run is scheduled but has not happened yet.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Runs returns how many scheduled runs have executed.
func (s *Scheduler) Runs() int {
	return s.runs
}
