package workflow

import (
	"github.com/EdgeApp/infinite-ramp/ports"
)

// Status is the lifecycle state of one step within one approve invocation.
// It moves idle -> started -> (completed | cancelled); ignored marks a step
// that ended without reaching its goal but should not fail the chain.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusIgnored   Status = "ignored"
)

// StepState tracks one step's lifecycle and whether it displayed a screen.
// SceneShown is nil until the step decided either way.
type StepState struct {
	Status     Status
	SceneShown *bool
}

// State is the per-invocation tracker: exactly one entry per step name,
// seeded idle at invocation start and never shared across invocations.
type State struct {
	order []string
	steps map[string]*StepState
}

// NewState seeds a tracker with one idle entry per step, in chain order
func NewState(names ...string) *State {
	s := &State{
		order: names,
		steps: make(map[string]*StepState, len(names)),
	}
	for _, name := range names {
		s.steps[name] = &StepState{Status: StatusIdle}
	}
	return s
}

// Get returns the tracked state for a step name, or nil for an unknown step
func (s *State) Get(name string) *StepState {
	return s.steps[name]
}

// Mark moves a step to the given status
func (s *State) Mark(name string, status Status) {
	if st := s.steps[name]; st != nil {
		st.Status = status
	}
}

// SetSceneShown records whether a step displayed a screen
func (s *State) SetSceneShown(name string, shown bool) {
	if st := s.steps[name]; st != nil {
		st.SceneShown = &shown
	}
}

// PresentMode decides how a step's first screen enters the navigation
// stack: replace when the immediately preceding step in chain order showed a
// screen, push otherwise. This keeps the linear onboarding sequence from
// piling up a deep back-stack.
func (s *State) PresentMode(name string) ports.PresentMode {
	for i, candidate := range s.order {
		if candidate != name {
			continue
		}
		if i == 0 {
			return ports.PresentPush
		}
		prev := s.steps[s.order[i-1]]
		if prev != nil && prev.SceneShown != nil && *prev.SceneShown {
			return ports.PresentReplace
		}
		return ports.PresentPush
	}
	return ports.PresentPush
}
