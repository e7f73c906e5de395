package engine

import "fmt"

// RunState is one phase in a plan run's lifecycle.
type RunState string

const (
	// StatePending is the initial state before resolution starts.
	StatePending RunState = "Pending"

	// StateResolving covers catalog loading, plan resolution, and
	// placeholder rendering.
	StateResolving RunState = "Resolving"

	// StateBlocked is the terminal failure for a run that never
	// produced an executable plan.
	StateBlocked RunState = "Blocked"

	// StateReady means a rendered plan is waiting to execute.
	StateReady RunState = "Ready"

	// StateApplying means one kit's file set is being merged.
	StateApplying RunState = "Applying"

	// StateKitApplied means the current kit committed cleanly.
	StateKitApplied RunState = "Applied"

	// StateConflictFailed means the current kit hit an ownership or
	// patch conflict and nothing of it was written.
	StateConflictFailed RunState = "ConflictFailed"

	// StateVerifyFailed means the current kit failed verification in
	// strict mode. Its files stay committed.
	StateVerifyFailed RunState = "VerifyFailed"

	// StateDone is the sole success terminal.
	StateDone RunState = "Done"

	// StateAborted is the terminal failure for a run stopped mid-plan.
	StateAborted RunState = "Aborted"
)

// transitions lists the legal successor states.
var transitions = map[RunState][]RunState{
	StatePending:        {StateResolving},
	StateResolving:      {StateBlocked, StateReady},
	StateReady:          {StateApplying, StateDone},
	StateApplying:       {StateKitApplied, StateConflictFailed, StateVerifyFailed, StateAborted},
	StateKitApplied:     {StateApplying, StateDone},
	StateConflictFailed: {StateAborted},
	StateVerifyFailed:   {StateAborted},
}

// Terminal reports whether the state ends a run.
func (s RunState) Terminal() bool {
	return s == StateBlocked || s == StateDone || s == StateAborted
}

// Run tracks one plan execution through its lifecycle.
type Run struct {
	state RunState
	kit   string
}

// NewRun creates a run in StatePending.
func NewRun() *Run {
	return &Run{state: StatePending}
}

// State returns the current state.
func (r *Run) State() RunState {
	return r.state
}

// Kit returns the id of the kit being applied, empty outside the
// per-kit states.
func (r *Run) Kit() string {
	return r.kit
}

// To advances the run. An illegal transition is a programmer error.
func (r *Run) To(next RunState) {
	for _, allowed := range transitions[r.state] {
		if next == allowed {
			if next == StateDone || next == StateBlocked {
				r.kit = ""
			}
			r.state = next
			return
		}
	}
	panic(fmt.Sprintf("illegal run state transition %s -> %s", r.state, next))
}

// ToApplying advances into StateApplying for the given kit.
func (r *Run) ToApplying(kitID string) {
	r.To(StateApplying)
	r.kit = kitID
}
