package voice

import "errors"

// Phase is the coarse controller state: idle → listening → (processing)? → idle.
type Phase int

const (
	// PhaseIdle indicates no capture is running.
	PhaseIdle Phase = iota
	// PhaseListening indicates audio is being captured.
	PhaseListening
	// PhaseProcessing indicates recorded audio is being transcribed.
	PhaseProcessing
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseListening:
		return "listening"
	case PhaseProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller.
type State struct {
	Listening  bool
	Processing bool
	Transcript string     // last final transcript
	Err        error      // last failure, cleared by StartListening
	Capability Capability // fixed at construction
	SessionID  string     // id of the current or last session
}

// Phase derives the coarse phase from the flags.
func (s State) Phase() Phase {
	switch {
	case s.Processing:
		return PhaseProcessing
	case s.Listening:
		return PhaseListening
	default:
		return PhaseIdle
	}
}

// Busy reports whether a capture or transcription is in flight.
func (s State) Busy() bool {
	return s.Listening || s.Processing
}

// ErrorMessage returns the user-facing text of Err, or "".
func (s State) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	var e *Error
	if errors.As(s.Err, &e) {
		return e.Message
	}
	return s.Err.Error()
}
