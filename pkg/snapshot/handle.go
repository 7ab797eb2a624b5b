package snapshot

import "sync/atomic"

// Handle is the single mutable reference through which readers obtain the
// current snapshot. Swapping in a new snapshot is one atomic pointer store:
// concurrent queries see either the old snapshot in full or the new one in
// full, never a mix.
type Handle struct {
	current atomic.Pointer[Snapshot]
}

// NewHandle returns a handle primed with the given snapshot, typically
// Empty() until the first load from storage completes.
func NewHandle(initial *Snapshot) *Handle {
	h := &Handle{}
	h.current.Store(initial)
	return h
}

// Load returns the current snapshot. Callers must hold on to the returned
// pointer for the duration of a request instead of calling Load repeatedly.
func (h *Handle) Load() *Snapshot {
	return h.current.Load()
}

// Store publishes a new snapshot.
func (h *Handle) Store(s *Snapshot) {
	h.current.Store(s)
}

// Version returns the version of the current snapshot.
func (h *Handle) Version() int64 {
	return h.current.Load().Version
}
