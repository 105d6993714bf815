// Package session runs one pass through a question set: it serializes
// submissions, records verdicts, checkpoints after every transition and
// appends a history record when the last question is acknowledged.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/checkpoint"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/grading"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
)

// ErrEmptySet is returned by New for a set with no questions.
var ErrEmptySet = errors.New("session: question set is empty")

// Deps are the collaborators of a Machine. Checkpoints and History may be
// nil, which disables persistence.
type Deps struct {
	Grader      grading.Grader
	Checkpoints *checkpoint.Store
	History     *history.Store
	Log         *logger.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Machine is the session state machine. All methods are safe for
// concurrent use; grading runs without holding the lock.
type Machine struct {
	mu sync.Mutex

	set  questiongen.Set
	key  string
	deps Deps
	log  *logger.Logger
	now  func() time.Time

	state      State
	inFlight   bool
	generation uint64
	sessionID  string
	resumed    bool
	attempt    *history.AttemptSummary
}

// New creates a machine for set, resuming from a checkpoint saved under
// the set's identity when one exists and describes a valid state.
func New(ctx context.Context, set questiongen.Set, deps Deps) (*Machine, error) {
	if set.Len() == 0 {
		return nil, ErrEmptySet
	}
	if deps.Grader == nil {
		return nil, errors.New("session: grader is required")
	}

	m := &Machine{
		set:       set,
		key:       set.Identity(),
		deps:      deps,
		log:       deps.Log,
		now:       deps.Now,
		state:     initialState(),
		sessionID: uuid.NewString(),
	}
	if m.log == nil {
		m.log = logger.Nop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.log = m.log.With("session_id", m.sessionID)

	if deps.Checkpoints != nil {
		if rec, ok := deps.Checkpoints.Load(ctx, m.key); ok {
			if st, ok := fromRecord(rec, set); ok {
				m.state = st
				m.resumed = true
				m.log.Info("resumed session", "index", st.ActiveIndex, "phase", string(st.Phase))
			} else {
				m.log.Warn("ignoring checkpoint that does not fit the question set")
			}
		}
	}
	return m, nil
}

// Submit grades text for the current question. It returns false without
// changing anything when the session is not answering, the text is blank,
// another submission is being graded, the grader fails, or the session was
// restarted while grading.
func (m *Machine) Submit(ctx context.Context, text string) (Feedback, bool) {
	if strings.TrimSpace(text) == "" {
		return Feedback{}, false
	}
	m.mu.Lock()
	if m.state.Phase != PhaseAnswering || m.inFlight {
		m.mu.Unlock()
		return Feedback{}, false
	}
	q := m.set.Questions[m.state.ActiveIndex]
	gen := m.generation
	m.inFlight = true
	m.mu.Unlock()

	verdict, err := m.deps.Grader.Grade(ctx, q, text)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation {
		m.log.Debug("discarding stale verdict", "question", q.ID)
		return Feedback{}, false
	}
	m.inFlight = false

	if err != nil {
		if !errors.Is(err, grading.ErrEmptyAnswer) {
			m.log.Warn("grading failed", "question", q.ID, "error", err)
		}
		return Feedback{}, false
	}
	// Cannot move while inFlight is held, but keep the guard explicit.
	if m.state.Phase != PhaseAnswering || m.set.Questions[m.state.ActiveIndex].ID != q.ID {
		return Feedback{}, false
	}

	rec := AnswerRecord{
		QuestionID:    q.ID,
		SubmittedText: trimmed(text),
		Correct:       verdict.Correct,
		Feedback:      verdict.Feedback,
		SubmittedAt:   m.now().UTC(),
	}
	m.state.AnswerLog = append(m.state.AnswerLog, rec)
	m.state.Phase = PhaseFeedback
	m.checkpoint(ctx)

	m.log.Info("answer graded", "question", q.ID, "correct", verdict.Correct, "source", string(verdict.Source))

	fb := m.feedbackFor(q, rec)
	fb.Source = verdict.Source
	return fb, true
}

// Advance acknowledges feedback. On the last question it finalizes the
// session and records the attempt in history.
func (m *Machine) Advance(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseFeedback {
		return false
	}

	if m.state.ActiveIndex == m.set.Len()-1 {
		m.finalize(ctx)
	} else {
		m.state.ActiveIndex++
		m.state.Phase = PhaseAnswering
	}
	m.checkpoint(ctx)
	return true
}

func (m *Machine) finalize(ctx context.Context) {
	sum := summarize(m.state, m.set.Len())
	attempt := history.NewSummary(sum.Correct, sum.Total, m.now().UTC())
	attempt.SessionID = m.sessionID
	m.attempt = &attempt
	m.state.Phase = PhaseComplete

	if m.deps.History != nil {
		if err := m.deps.History.Append(ctx, attempt); err != nil {
			m.log.Warn("record attempt", "error", err)
		}
	}
	m.log.Info("session complete", "score", attempt.Score, "total", attempt.Total, "percentage", attempt.Percentage)
}

// Restart returns to the first question with an empty log and drops the
// checkpoint. Any grading still in flight is discarded when it returns.
// History is untouched.
func (m *Machine) Restart(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = initialState()
	m.inFlight = false
	m.generation++
	m.attempt = nil
	m.resumed = false
	m.sessionID = uuid.NewString()
	if m.deps.Checkpoints != nil {
		m.deps.Checkpoints.Clear(ctx, m.key)
	}
	m.log.Info("session restarted", "generation", m.generation, "new_session_id", m.sessionID)
}

func (m *Machine) checkpoint(ctx context.Context) {
	if m.deps.Checkpoints == nil {
		return
	}
	m.deps.Checkpoints.Save(ctx, m.key, m.state.toRecord())
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Current returns the active question. The second result is false once the
// session is complete.
func (m *Machine) Current() (questiongen.Question, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase == PhaseComplete {
		return questiongen.Question{}, false
	}
	return m.set.Questions[m.state.ActiveIndex], true
}

// Questions returns the question set in order.
func (m *Machine) Questions() []questiongen.Question {
	out := make([]questiongen.Question, len(m.set.Questions))
	copy(out, m.set.Questions)
	return out
}

// Key is the identity of the active question set.
func (m *Machine) Key() string { return m.key }

// InFlight reports whether a submission is being graded.
func (m *Machine) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// Resumed reports whether the state was restored from a checkpoint.
func (m *Machine) Resumed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumed
}

// SessionID identifies this pass; it changes on Restart.
func (m *Machine) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Summary returns the score so far.
func (m *Machine) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return summarize(m.state, m.set.Len())
}

// Attempt returns the summary recorded at completion. A session resumed in
// the complete phase rebuilds it from the log without re-recording it.
func (m *Machine) Attempt() (history.AttemptSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseComplete {
		return history.AttemptSummary{}, false
	}
	if m.attempt != nil {
		return *m.attempt, true
	}
	sum := summarize(m.state, m.set.Len())
	last := m.state.AnswerLog[len(m.state.AnswerLog)-1]
	return history.NewSummary(sum.Correct, sum.Total, last.SubmittedAt), true
}

// LastFeedback returns the feedback for the just-answered question while
// in the feedback phase, so a resumed session can show it again.
func (m *Machine) LastFeedback() (Feedback, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseFeedback {
		return Feedback{}, false
	}
	rec := m.state.AnswerLog[len(m.state.AnswerLog)-1]
	return m.feedbackFor(m.set.Questions[m.state.ActiveIndex], rec), true
}

// Results pairs each question with its answer, in question order.
func (m *Machine) Results() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := make(map[string]AnswerRecord, len(m.state.AnswerLog))
	for _, a := range m.state.AnswerLog {
		byID[a.QuestionID] = a
	}
	out := make([]Result, len(m.set.Questions))
	for i, q := range m.set.Questions {
		a, ok := byID[q.ID]
		out[i] = Result{Question: q, Answer: a, Answered: ok}
	}
	return out
}

func (m *Machine) feedbackFor(q questiongen.Question, rec AnswerRecord) Feedback {
	return Feedback{
		QuestionID:     q.ID,
		Correct:        rec.Correct,
		Message:        rec.Feedback,
		ExpectedAnswer: q.ExpectedAnswer,
		Explanation:    q.Explanation,
		Last:           m.state.ActiveIndex == m.set.Len()-1,
	}
}
