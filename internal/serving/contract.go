package serving

import (
	"sync"

	genomeerrors "github.com/genomectl/repogenome/internal/errors"
)

// Effect declares a tool's side-effect class, per spec.md §6's
// side-effect-declared tool table.
type Effect string

const (
	EffectReader       Effect = "reader"
	EffectWriter       Effect = "writer"
	EffectSessionWrite Effect = "reader+session-record" // impact: a reader that also records session state
)

// SessionState is the per-session {loaded_at, last_impact,
// pending_update, contract_state} record spec.md §4.10 describes,
// enforcing the Agent Contract across the tool calls of one session.
type SessionState struct {
	mu sync.Mutex

	loaded           bool
	pendingUpdate    bool // set by impact, cleared by update or a clean validate
	validationFailed bool
}

// NewSessionState returns a fresh, unloaded session.
func NewSessionState() *SessionState {
	return &SessionState{}
}

// BeforeTool enforces the Agent Contract ahead of invoking a tool,
// returning a ContractViolation error (blocking the call) when the
// session hasn't satisfied a prerequisite.
func (s *SessionState) BeforeTool(name string, effect Effect) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.validationFailed && name != "scan" && name != "validate" {
		return genomeerrors.ContractViolation("validation-failed",
			"a prior validate call reported invariant violations",
			"call `validate` again after `scan`, or re-`scan` the repository").
			WithContext("tool", name)
	}

	if effect == EffectWriter && name != "scan" && !s.loaded {
		return genomeerrors.ContractViolation("missing-load",
			"session must load `current` or `summary` before any mutating tool",
			"call the `current` or `summary` resource first").
			WithContext("tool", name)
	}

	if s.pendingUpdate && name != "update" && name != "validate" && name != "scan" {
		return genomeerrors.ContractViolation("missing-update",
			"an impact was recorded but no update followed",
			"call `update` with a reason, or `validate`").
			WithContext("tool", name)
	}

	return nil
}

// AfterLoad marks the session as having loaded a `current`/`summary`
// resource, satisfying load-before-mutate.
func (s *SessionState) AfterLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
}

// AfterImpact marks an edit as imminent: subsequent reader tools are
// blocked until `update` or a clean `validate` follows.
func (s *SessionState) AfterImpact() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingUpdate = true
}

// AfterUpdate clears the pending-update block.
func (s *SessionState) AfterUpdate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingUpdate = false
}

// AfterValidate records the outcome of a validate call: a clean result
// clears both the validation-failed and pending-update blocks; a dirty
// result sets validation-failed, gating every tool but scan/validate.
func (s *SessionState) AfterValidate(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validationFailed = !ok
	if ok {
		s.pendingUpdate = false
	}
}

// Snapshot returns the session's current contract state for
// diagnostics (e.g. a `stats` or `validate` response payload).
func (s *SessionState) Snapshot() (loaded, pendingUpdate, validationFailed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, s.pendingUpdate, s.validationFailed
}
