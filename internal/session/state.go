package session

import (
	"strings"
	"time"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
)

// Phase is the position of the session in its answer loop.
type Phase string

const (
	PhaseAnswering Phase = "answering" // waiting for a submission
	PhaseFeedback  Phase = "feedback"  // verdict shown, waiting for advance
	PhaseComplete  Phase = "complete"  // terminal
)

func (p Phase) valid() bool {
	switch p {
	case PhaseAnswering, PhaseFeedback, PhaseComplete:
		return true
	}
	return false
}

// AnswerRecord is one graded submission.
type AnswerRecord struct {
	QuestionID    string
	SubmittedText string
	Correct       bool
	Feedback      string
	SubmittedAt   time.Time
}

// State is the session's mutable progress.
//
// len(AnswerLog) == ActiveIndex while answering, ActiveIndex+1 in
// feedback, and the question count once complete.
type State struct {
	ActiveIndex int
	AnswerLog   []AnswerRecord
	Phase       Phase
}

func initialState() State {
	return State{Phase: PhaseAnswering}
}

func (s State) clone() State {
	c := s
	if s.AnswerLog != nil {
		c.AnswerLog = make([]AnswerRecord, len(s.AnswerLog))
		copy(c.AnswerLog, s.AnswerLog)
	}
	return c
}

// Feedback is what the learner sees after a submission.
type Feedback struct {
	QuestionID     string
	Correct        bool
	Message        string
	ExpectedAnswer string
	Explanation    string
	Source         grading.Source
	// Last is true when advancing will complete the session.
	Last bool
}

// Result is one row of the completion view.
type Result struct {
	Question questiongen.Question
	Answer   AnswerRecord
	Answered bool
}

func (s State) toRecord() checkpoint.Record {
	rec := checkpoint.Record{
		AnswerLog:   make([]checkpoint.Answer, len(s.AnswerLog)),
		ActiveIndex: s.ActiveIndex,
		Phase:       string(s.Phase),
		Complete:    s.Phase == PhaseComplete,
	}
	for i, a := range s.AnswerLog {
		rec.AnswerLog[i] = checkpoint.Answer{
			QuestionID:    a.QuestionID,
			SubmittedText: a.SubmittedText,
			Correct:       a.Correct,
			Feedback:      a.Feedback,
			SubmittedAt:   a.SubmittedAt,
		}
	}
	return rec
}

// fromRecord rebuilds a State and checks it against the question set. A
// checkpoint that does not describe a reachable state of this set is
// rejected.
func fromRecord(rec checkpoint.Record, set questiongen.Set) (State, bool) {
	st := State{ActiveIndex: rec.ActiveIndex, Phase: Phase(rec.Phase)}
	if !st.Phase.valid() || rec.Complete != (st.Phase == PhaseComplete) {
		return State{}, false
	}
	n := set.Len()
	if st.ActiveIndex < 0 || st.ActiveIndex >= n || len(rec.AnswerLog) > n {
		return State{}, false
	}

	for i, a := range rec.AnswerLog {
		if a.QuestionID != set.Questions[i].ID {
			return State{}, false
		}
		st.AnswerLog = append(st.AnswerLog, AnswerRecord{
			QuestionID:    a.QuestionID,
			SubmittedText: a.SubmittedText,
			Correct:       a.Correct,
			Feedback:      a.Feedback,
			SubmittedAt:   a.SubmittedAt,
		})
	}

	want := st.ActiveIndex
	switch st.Phase {
	case PhaseFeedback:
		want = st.ActiveIndex + 1
	case PhaseComplete:
		if st.ActiveIndex != n-1 {
			return State{}, false
		}
		want = n
	}
	if len(st.AnswerLog) != want {
		return State{}, false
	}
	return st, true
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
