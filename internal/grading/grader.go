package grading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/logger"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/questiongen"
)

// ErrEmptyAnswer is returned for blank submissions. No grader is called.
var ErrEmptyAnswer = errors.New("grading: empty answer")

// Source records which strategy produced a verdict.
type Source string

const (
	SourceSemantic Source = "semantic"
	SourceMatcher  Source = "matcher"
	SourceFallback Source = "fallback"
)

// Verdict is the outcome of grading one submission.
type Verdict struct {
	Correct  bool
	Feedback string
	Source   Source
}

// Grader grades a submission for a question.
type Grader interface {
	Grade(ctx context.Context, q questiongen.Question, submitted string) (Verdict, error)
}

// SemanticRequest is what the semantic grader sees.
type SemanticRequest struct {
	Question       string
	ExpectedAnswer string
	SubmittedText  string
	PassageExcerpt string
}

// SemanticGrader judges meaning rather than wording.
type SemanticGrader interface {
	Evaluate(ctx context.Context, req SemanticRequest) (Verdict, error)
}

// UnavailablePolicy decides the verdict when the semantic grader fails.
type UnavailablePolicy string

const (
	// PolicyAcceptAnswer marks the answer correct so an outage never
	// costs the learner a point.
	PolicyAcceptAnswer UnavailablePolicy = "accept-answer"
	// PolicyUseLocalMatcher grades with the key-term matcher instead.
	PolicyUseLocalMatcher UnavailablePolicy = "use-local-matcher"
	// PolicyReject marks the answer incorrect.
	PolicyReject UnavailablePolicy = "reject"
)

// ParsePolicy accepts the policy names, case-insensitively.
func ParsePolicy(s string) (UnavailablePolicy, error) {
	switch p := UnavailablePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyAcceptAnswer, PolicyUseLocalMatcher, PolicyReject:
		return p, nil
	case "":
		return PolicyAcceptAnswer, nil
	default:
		return "", fmt.Errorf("unknown grader-unavailable policy %q (want accept-answer, use-local-matcher or reject)", s)
	}
}

const (
	fallbackAcceptFeedback = "Your answer has been recorded. We couldn't review it in detail right now, so it counts as correct."
	fallbackRejectFeedback = "We couldn't check your answer right now. Compare it with the expected answer below."
)

// Coordinator grades through the semantic grader and applies an explicit
// policy when that grader is unavailable.
type Coordinator struct {
	semantic SemanticGrader
	matcher  *Matcher
	policy   UnavailablePolicy
	timeout  time.Duration
	log      *logger.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPolicy sets what a failed semantic grading call turns into.
func WithPolicy(p UnavailablePolicy) CoordinatorOption {
	return func(c *Coordinator) { c.policy = p }
}

// WithTimeout bounds each semantic grading call. Zero disables the bound.
func WithTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.timeout = d }
}

// WithMatcher sets the matcher used by PolicyUseLocalMatcher.
func WithMatcher(m *Matcher) CoordinatorOption {
	return func(c *Coordinator) { c.matcher = m }
}

// WithLogger sets the logger for fallback decisions.
func WithLogger(l *logger.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.log = l }
}

// NewCoordinator returns a Coordinator defaulting to PolicyAcceptAnswer
// and a 20s timeout.
func NewCoordinator(semantic SemanticGrader, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		semantic: semantic,
		matcher:  NewMatcher(),
		policy:   PolicyAcceptAnswer,
		timeout:  20 * time.Second,
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Policy reports the configured unavailable policy.
func (c *Coordinator) Policy() UnavailablePolicy { return c.policy }

// Grade returns ErrEmptyAnswer for blank input and the caller's context
// error if ctx ends first. Every other failure resolves to a verdict.
func (c *Coordinator) Grade(ctx context.Context, q questiongen.Question, submitted string) (Verdict, error) {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return Verdict{}, ErrEmptyAnswer
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	v, err := c.semantic.Evaluate(callCtx, SemanticRequest{
		Question:       q.Text,
		ExpectedAnswer: q.ExpectedAnswer,
		SubmittedText:  submitted,
		PassageExcerpt: q.PassageExcerpt,
	})
	if err == nil {
		v.Source = SourceSemantic
		return v, nil
	}
	if ctx.Err() != nil {
		return Verdict{}, ctx.Err()
	}

	c.log.Warn("semantic grader unavailable, applying policy",
		"question", q.ID, "policy", string(c.policy), "error", err)
	return c.fallback(q, submitted), nil
}

func (c *Coordinator) fallback(q questiongen.Question, submitted string) Verdict {
	switch c.policy {
	case PolicyUseLocalMatcher:
		return matcherVerdict(c.matcher, q, submitted)
	case PolicyReject:
		return Verdict{Correct: false, Feedback: fallbackRejectFeedback, Source: SourceFallback}
	default:
		return Verdict{Correct: true, Feedback: fallbackAcceptFeedback, Source: SourceFallback}
	}
}

// LocalGrader grades with the key-term matcher only. It never calls out.
type LocalGrader struct {
	Matcher *Matcher
}

// NewLocalGrader returns a LocalGrader using m, or the default matcher.
func NewLocalGrader(m *Matcher) *LocalGrader {
	if m == nil {
		m = NewMatcher()
	}
	return &LocalGrader{Matcher: m}
}

func (g *LocalGrader) Grade(_ context.Context, q questiongen.Question, submitted string) (Verdict, error) {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return Verdict{}, ErrEmptyAnswer
	}
	return matcherVerdict(g.Matcher, q, submitted), nil
}

func matcherVerdict(m *Matcher, q questiongen.Question, submitted string) Verdict {
	if m.Matches(submitted, q.ExpectedAnswer) {
		return Verdict{Correct: true, Feedback: "Correct! " + q.Explanation, Source: SourceMatcher}
	}
	return Verdict{
		Correct:  false,
		Feedback: fmt.Sprintf("Not quite. The expected answer was %q. %s", q.ExpectedAnswer, q.Explanation),
		Source:   SourceMatcher,
	}
}
