// Package viewstate holds the per-component state the admin panels share:
// an edited entity with its working copy, a wholesale-replaced child
// resource list guarded against out-of-order reloads, and the eligibility
// gate for the AI title generator. Nothing in here touches the network or
// the terminal; the TUI layer wires it to both.
package viewstate

// Edit tracks the last server-confirmed entity alongside a working copy
// that only exists while edit mode is on. The entity is never replaced by
// local values: Commit takes the server's authoritative response.
type Edit[T any] struct {
	entity  T
	working T
	editing bool
}

// NewEdit starts tracking a server-confirmed entity outside edit mode.
func NewEdit[T any](entity T) Edit[T] {
	return Edit[T]{entity: entity, working: entity}
}

// Entity returns the authoritative server-confirmed value.
func (e *Edit[T]) Entity() T {
	return e.entity
}

// Working returns the local working copy. Outside edit mode it mirrors the
// entity.
func (e *Edit[T]) Working() T {
	if !e.editing {
		return e.entity
	}
	return e.working
}

// Editing reports whether edit mode is active.
func (e *Edit[T]) Editing() bool {
	return e.editing
}

// Enter switches edit mode on, seeding the working copy from the entity.
// No network call is involved. Re-entering while already editing keeps the
// current working copy.
func (e *Edit[T]) Enter() {
	if e.editing {
		return
	}
	e.working = e.entity
	e.editing = true
}

// SetWorking updates the working copy. Ignored outside edit mode so the
// displayed value cannot drift from the entity while not editing.
func (e *Edit[T]) SetWorking(value T) {
	if !e.editing {
		return
	}
	e.working = value
}

// Commit replaces the entity with a server-confirmed value and leaves edit
// mode. Callers must pass the response entity, never the working copy.
func (e *Edit[T]) Commit(confirmed T) {
	e.entity = confirmed
	e.working = confirmed
	e.editing = false
}

// Abort leaves edit mode and discards the working copy.
func (e *Edit[T]) Abort() {
	e.working = e.entity
	e.editing = false
}
