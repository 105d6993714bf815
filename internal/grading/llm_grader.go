package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/llm"
)

// VerdictSchema is the structured-output contract for semantic grading.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Whether a student's short answer shows understanding, with brief feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{"type": "boolean"},
			"feedback": map[string]any{
				"type":        "string",
				"description": "One or two sentences addressed to the student",
			},
		},
		"required":             []string{"isCorrect", "feedback"},
		"additionalProperties": false,
	},
}

const graderSystemPrompt = `You are an experienced reading comprehension evaluator. Assess whether the student's answer demonstrates understanding of the key concepts.

ACCEPT answers that:
- Identify the core concept even if simplified (e.g. "to lay eggs" is correct for "the queen bee lays eggs to ensure colony survival")
- Paraphrase accurately using different words
- Cover the main point even if secondary details are missing
- Are concise but conceptually correct

REJECT answers that:
- Are fragments with no meaning (e.g. "because they are")
- Are too vague to show specific understanding (e.g. "they do things")
- Contradict the passage
- Are off-topic
- Show clear misunderstanding

A SHORT but ACCURATE answer that captures the main concept is CORRECT. Reject only when the answer is too vague to show understanding or is factually wrong.`

var graderUserTmpl = template.Must(template.New("grade").Parse(
	`Question: {{.Question}}

Correct Answer: {{.ExpectedAnswer}}

Student Answer: {{.SubmittedText}}
{{if .PassageExcerpt}}
Passage Context: {{.PassageExcerpt}}
{{end}}
Evaluate: does this answer demonstrate understanding? Concise correct answers should be accepted; vague or incomplete fragments should be rejected.`))

// LLMGrader is the SemanticGrader backed by an LLM provider.
type LLMGrader struct {
	provider llm.Provider
}

// NewLLMGrader creates a grader using provider.
func NewLLMGrader(provider llm.Provider) *LLMGrader {
	return &LLMGrader{provider: provider}
}

type verdictOutput struct {
	IsCorrect *bool  `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

func (g *LLMGrader) Evaluate(ctx context.Context, req SemanticRequest) (Verdict, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAnswerGrading)

	var msg strings.Builder
	if err := graderUserTmpl.Execute(&msg, req); err != nil {
		return Verdict{}, fmt.Errorf("render grading prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      graderSystemPrompt,
		Messages:    llm.UserMessage(msg.String()),
		Schema:      VerdictSchema,
		MaxTokens:   300,
		Temperature: 0.3,
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("semantic grading: %w", err)
	}

	var out verdictOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if out.IsCorrect == nil {
		return Verdict{}, fmt.Errorf("decode verdict: isCorrect missing")
	}

	return Verdict{Correct: *out.IsCorrect, Feedback: strings.TrimSpace(out.Feedback)}, nil
}
