package lock

import "fmt"

// State is the state of the passcode entry state machine.
type State int

const (
	StateIdle State = iota
	StateCreatingFirst
	StateConfirmingSecond
	StateVerifying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCreatingFirst:
		return "creating-first"
	case StateConfirmingSecond:
		return "confirming-second"
	case StateVerifying:
		return "verifying"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reason says what a successful verification unlocks.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonDisablePause turns the lock off but keeps the passcode.
	ReasonDisablePause
	// ReasonDisableDelete turns the lock off and erases the passcode.
	ReasonDisableDelete
	// ReasonUnlockGate grants one protected action to the caller.
	ReasonUnlockGate
	// ReasonUnlockApp unlocks the whole app after an idle relock.
	ReasonUnlockApp
	// ReasonChangePasscode continues into passcode creation.
	ReasonChangePasscode
	// ReasonResume re-enables a paused lock with the retained passcode.
	ReasonResume
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDisablePause:
		return "disable-pause"
	case ReasonDisableDelete:
		return "disable-delete"
	case ReasonUnlockGate:
		return "unlock-gate"
	case ReasonUnlockApp:
		return "unlock-app"
	case ReasonChangePasscode:
		return "change-passcode"
	case ReasonResume:
		return "resume"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Snapshot is a read-only view of the engine for rendering. It never
// contains passcode digits, only how many have been entered.
type Snapshot struct {
	State  State
	Reason Reason

	FirstLen   int
	ConfirmLen int
	VerifyLen  int

	// Busy is true while a delayed transition (auto-advance, error
	// animation) is pending. Digit input is ignored meanwhile.
	Busy bool
	// Err is the last entry error (ErrPasscodeMismatch, ErrWrongPasscode)
	// until the next digit is typed.
	Err error
	// Refocus asks the UI to move input focus to the active row.
	Refocus bool
	// Attempts counts failed verifications in the current flow.
	Attempts int

	Enabled bool
	Locked  bool
}

// Entered returns the number of digits in the row that currently takes
// input.
func (s Snapshot) Entered() int {
	switch s.State {
	case StateCreatingFirst:
		return s.FirstLen
	case StateConfirmingSecond:
		return s.ConfirmLen
	case StateVerifying:
		return s.VerifyLen
	default:
		return 0
	}
}
