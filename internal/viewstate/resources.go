package viewstate

// ResourceList is the ordered set of child resources a panel displays for
// one (sourceId, resourceType) scope. The list is only ever replaced
// wholesale from a reload response. Each reload takes a ticket from Begin;
// Apply discards any response whose ticket is no longer the latest issued,
// so a slow stale reload cannot clobber a newer one (last-write-wins by
// issue order, not completion order).
type ResourceList[T any] struct {
	issued uint64
	total  int64
	items  []T
}

// Begin registers the start of a reload and returns its ticket.
func (l *ResourceList[T]) Begin() uint64 {
	l.issued++
	return l.issued
}

// Apply replaces the list with a reload response if ticket is still the
// latest issued. It reports whether the response was accepted.
func (l *ResourceList[T]) Apply(ticket uint64, items []T, total int64) bool {
	if ticket != l.issued {
		return false
	}
	l.items = items
	l.total = total
	return true
}

// Items returns the current children.
func (l *ResourceList[T]) Items() []T {
	return l.items
}

// Len returns the number of displayed children.
func (l *ResourceList[T]) Len() int {
	return len(l.items)
}

// Total returns the server-reported record count from the last accepted
// reload, which may exceed the displayed page.
func (l *ResourceList[T]) Total() int64 {
	return l.total
}

// Latest returns the most recently issued ticket. A response holding an
// older ticket will be discarded by Apply.
func (l *ResourceList[T]) Latest() uint64 {
	return l.issued
}
