package game

// Phase is the room's position in the game lifecycle.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseInProgress
	PhaseFinished
	PhaseValidating
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseInProgress:
		return "inProgress"
	case PhaseFinished:
		return "finished"
	case PhaseValidating:
		return "validating"
	default:
		return "unknown"
	}
}

// LifecycleEvent drives phase transitions.
type LifecycleEvent int

const (
	EventStart LifecycleEvent = iota
	EventEnd
	EventTimeout
	EventValidate
	EventSkipValidation
	EventReset
	EventValidationComplete
)

func (e LifecycleEvent) String() string {
	switch e {
	case EventStart:
		return "START"
	case EventEnd:
		return "END"
	case EventTimeout:
		return "TIMEOUT"
	case EventValidate:
		return "VALIDATE"
	case EventSkipValidation:
		return "SKIP_VALIDATION"
	case EventReset:
		return "RESET"
	case EventValidationComplete:
		return "VALIDATION_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

var transitions = map[Phase]map[LifecycleEvent]Phase{
	PhaseWaiting: {
		EventStart: PhaseInProgress,
	},
	PhaseInProgress: {
		EventEnd:     PhaseFinished,
		EventTimeout: PhaseFinished,
	},
	PhaseFinished: {
		EventValidate:       PhaseValidating,
		EventSkipValidation: PhaseWaiting,
		EventReset:          PhaseWaiting,
	},
	PhaseValidating: {
		EventValidationComplete: PhaseWaiting,
	},
}

// nextPhase resolves the transition table. It has no side effects; callers
// apply timestamps and per-round resets only after a transition is accepted.
func nextPhase(from Phase, event LifecycleEvent) (Phase, error) {
	allowed, ok := transitions[from]
	if !ok {
		return from, ErrInvalidTransition
	}
	to, ok := allowed[event]
	if !ok {
		return from, ErrInvalidTransition
	}
	return to, nil
}
