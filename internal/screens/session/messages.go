package session

import (
	sess "github.com/Oiubrab/edaccelerator-learning-assessment/internal/session"
)

// setReadyMsg is sent when the question set is loaded and the machine built.
type setReadyMsg struct {
	Machine *sess.Machine
}

// setFailedMsg is sent when the question set could not be produced.
type setFailedMsg struct {
	Err error
}

// gradedMsg carries the outcome of a submission. Token ties it to the
// screen generation that sent it; restarting invalidates older tokens.
type gradedMsg struct {
	Token    uint64
	Feedback sess.Feedback
	OK       bool
}
