package viewstate

import (
	"strings"
	"unicode/utf8"
)

// Content length bounds for the AI title generator, matching the backend's
// own validation. Exactly MinContentLength characters is still too short;
// exactly MaxContentLength is still acceptable.
const (
	MinContentLength = 100
	MaxContentLength = 5000
)

// Reason explains why the generation action is unavailable.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTooShort
	ReasonTooLong
	ReasonNoQuota
	ReasonBusy
)

// Verdict is one gate evaluation.
type Verdict struct {
	Allowed bool
	Reason  Reason
}

// Gate decides whether the AI title generator may run. It is advisory
// client-side UX only: the server still enforces quota, and a generation
// call can be rejected even after a passing verdict (two tabs racing).
// Each gated control owns its own Gate; the quota flag is never shared
// across instances.
type Gate struct {
	privileged bool
	exhausted  bool
	busy       bool
}

// NewGate creates a gate. Privileged callers bypass the quota check
// entirely. Quota starts optimistic: the action is quota-eligible until
// the first check says otherwise.
func NewGate(privileged bool) *Gate {
	return &Gate{privileged: privileged}
}

// Privileged reports whether this gate skips quota checks.
func (g *Gate) Privileged() bool {
	return g.privileged
}

// ObserveQuota records a successful quota check.
func (g *Gate) ObserveQuota(remaining int64) {
	g.exhausted = remaining <= 0
}

// ObserveCheckFailure records an unreachable or rejected quota check.
// Quota fails closed: an unanswerable check counts as exhausted.
func (g *Gate) ObserveCheckFailure() {
	g.exhausted = true
}

// SetBusy marks a generation call in flight, blocking duplicates.
func (g *Gate) SetBusy(busy bool) {
	g.busy = busy
}

// Busy reports whether a generation call is outstanding.
func (g *Gate) Busy() bool {
	return g.busy
}

// Evaluate checks content against the gate. Length bounds are checked
// first, then quota for non-privileged callers, then the in-flight lock.
func (g *Gate) Evaluate(content string) Verdict {
	length := utf8.RuneCountInString(strings.TrimSpace(content))
	if length <= MinContentLength {
		return Verdict{Reason: ReasonTooShort}
	}
	if length > MaxContentLength {
		return Verdict{Reason: ReasonTooLong}
	}
	if !g.privileged && g.exhausted {
		return Verdict{Reason: ReasonNoQuota}
	}
	if g.busy {
		return Verdict{Reason: ReasonBusy}
	}
	return Verdict{Allowed: true}
}
