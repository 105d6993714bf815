package questiongen

import (
	"fmt"
	"strings"
)

// Validator checks a decoded question set. Implementations are stateless.
type Validator interface {
	Name() string
	Validate(qs []Question) *ValidationError
}

// ValidationError describes why a generated set was rejected.
type ValidationError struct {
	Validator  string
	QuestionID string
	Message    string
}

func (e *ValidationError) Error() string {
	if e.QuestionID != "" {
		return fmt.Sprintf("validator %q: %s: %s", e.Validator, e.QuestionID, e.Message)
	}
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// CountValidator requires exactly N questions.
type CountValidator struct {
	N int
}

func (v *CountValidator) Name() string { return "count" }

func (v *CountValidator) Validate(qs []Question) *ValidationError {
	if len(qs) != v.N {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d questions, got %d", v.N, len(qs)),
		}
	}
	return nil
}

// StructuralValidator checks required fields, lengths and enum values.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(qs []Question) *ValidationError {
	fail := func(q Question, msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), QuestionID: q.ID, Message: msg}
	}

	for _, q := range qs {
		switch {
		case q.Text == "":
			return fail(q, "question text is empty")
		case len(q.Text) > 500:
			return fail(q, "question text exceeds 500 characters")
		case q.ExpectedAnswer == "":
			return fail(q, "expected answer is empty")
		case len(q.ExpectedAnswer) > 200:
			return fail(q, "expected answer exceeds 200 characters")
		case q.Explanation == "":
			return fail(q, "explanation is empty")
		case !q.Difficulty.Valid():
			return fail(q, fmt.Sprintf("difficulty %q is not easy, medium or hard", q.Difficulty))
		}
	}
	return nil
}

// UniqueValidator rejects sets that repeat a question.
type UniqueValidator struct{}

func (v *UniqueValidator) Name() string { return "unique" }

func (v *UniqueValidator) Validate(qs []Question) *ValidationError {
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		key := strings.ToLower(strings.TrimSpace(q.Text))
		if seen[key] {
			return &ValidationError{Validator: v.Name(), QuestionID: q.ID, Message: "duplicate question"}
		}
		seen[key] = true
	}
	return nil
}
