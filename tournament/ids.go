package tournament

// IDAllocator hands out monotonically increasing ids. Every session owns its
// own allocators, so ids are unique within a run and tests never share
// counters.
type IDAllocator struct {
	next int
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh id. Ids are never reused.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next++
	return id
}
