package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/llm"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
)

func testPassage(t *testing.T) *passage.Passage {
	t.Helper()
	p, err := passage.Default()
	if err != nil {
		t.Fatalf("load passage: %v", err)
	}
	return p
}

func questionJSON(n int) string {
	parts := make([]string, n)
	difficulties := []string{"easy", "medium", "hard"}
	for i := range n {
		parts[i] = fmt.Sprintf(`{
			"question": "Question number %d about bees?",
			"correctAnswer": "answer %d",
			"explanation": "Because the passage says so (%d).",
			"difficulty": %q,
			"relevantPassageExcerpt": "excerpt %d",
			"hint": "Look at section %d."
		}`, i+1, i+1, i+1, difficulties[i%3], i+1, i+1)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestGenerate_WrappedObject(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"questions":` + questionJSON(6) + `}`),
	})
	gen := New(mock, DefaultConfig())

	set, err := gen.Generate(context.Background(), testPassage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 6 {
		t.Fatalf("got %d questions, want 6", set.Len())
	}
	if set.PassageID != "secret-life-of-honeybees" {
		t.Errorf("passage id = %q", set.PassageID)
	}

	q := set.Questions[0]
	if !strings.HasPrefix(q.ID, "q1-") {
		t.Errorf("first id = %q, want q1- prefix", q.ID)
	}
	if q.Type != TypeShortAnswer {
		t.Errorf("type = %q", q.Type)
	}
	if q.Difficulty != DifficultyEasy || q.Hint != "Look at section 1." || q.PassageExcerpt != "excerpt 1" {
		t.Errorf("fields not mapped: %+v", q)
	}
	if !strings.HasPrefix(set.Questions[5].ID, "q6-") {
		t.Errorf("last id = %q", set.Questions[5].ID)
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(questionJSON(6))})
	gen := New(mock, DefaultConfig())

	if _, err := gen.Generate(context.Background(), testPassage(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := mock.LastRequest()
	if req.Schema != QuestionSetSchema {
		t.Error("expected the question set schema")
	}
	if req.Temperature != 0.7 {
		t.Errorf("temperature = %v", req.Temperature)
	}
	user := req.Messages[0].Content
	for _, want := range []string{"exactly 6", "The Secret Life of Honeybees", "waggle dance", "## The Drones"} {
		if !strings.Contains(user, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestGenerate_NoSchema(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseSchema = false
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"items":` + questionJSON(6) + `}`)})

	set, err := New(mock, cfg).Generate(context.Background(), testPassage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.LastRequest().Schema != nil {
		t.Error("schema should not be sent")
	}
	if set.Len() != 6 {
		t.Errorf("got %d questions", set.Len())
	}
}

func TestGenerate_Failures(t *testing.T) {
	tests := []struct {
		name      string
		resp      llm.MockResponse
		stage     string
		retryable bool
	}{
		{"provider down", llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}, "request", true},
		{"truncated", llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{}}, "request", false},
		{"not json", llm.MockResponse{Content: json.RawMessage(`Sure! Here are`)}, "decode", true},
		{"no list", llm.MockResponse{Content: json.RawMessage(`{"title":"bees"}`)}, "decode", true},
		{"five questions", llm.MockResponse{Content: json.RawMessage(questionJSON(5))}, "validate", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := New(llm.NewMockProvider(tt.resp), DefaultConfig())
			_, err := gen.Generate(context.Background(), testPassage(t))

			var gerr *GenerationError
			if !errors.As(err, &gerr) {
				t.Fatalf("expected GenerationError, got %T: %v", err, err)
			}
			if gerr.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", gerr.Stage, tt.stage)
			}
			if gerr.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", gerr.Retryable, tt.retryable)
			}
		})
	}
}

func TestGenerate_UsesPurpose(t *testing.T) {
	var gotPurpose string
	p := providerFunc(func(ctx context.Context, _ llm.Request) (*llm.Response, error) {
		gotPurpose = llm.PurposeFrom(ctx)
		return &llm.Response{Content: json.RawMessage(questionJSON(6))}, nil
	})
	if _, err := New(p, DefaultConfig()).Generate(context.Background(), testPassage(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPurpose != llm.PurposeQuestionGeneration {
		t.Errorf("purpose = %q", gotPurpose)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(questionJSON(6)),
		Delay:   time.Second,
	})
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond

	_, err := New(mock, cfg).Generate(context.Background(), testPassage(t))
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("err = %v, want *GenerationError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
	if !gerr.Retryable {
		t.Error("a timed-out generation should be retryable")
	}
}

type providerFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }

func TestSetIdentity(t *testing.T) {
	a := Set{Questions: toQuestions([]questionOutput{{Question: "Who lays eggs?"}, {Question: "What is a drone?"}})}
	b := Set{Questions: toQuestions([]questionOutput{{Question: "Who lays eggs?"}, {Question: "What is pollen?"}})}
	again := Set{Questions: toQuestions([]questionOutput{{Question: "who lays eggs? "}, {Question: "What is a drone?"}})}

	if a.Identity() == b.Identity() {
		t.Error("different sets share an identity")
	}
	if a.Identity() != again.Identity() {
		t.Errorf("identity not deterministic: %q vs %q", a.Identity(), again.Identity())
	}
	if strings.Count(a.Identity(), "|") != 1 {
		t.Errorf("identity = %q", a.Identity())
	}
}

func TestStaticGenerator(t *testing.T) {
	set, err := Bank("secret-life-of-honeybees")
	if err != nil {
		t.Fatalf("bank: %v", err)
	}
	got, err := (&StaticGenerator{Set: set}).Generate(context.Background(), testPassage(t))
	if err != nil || got.Identity() != set.Identity() {
		t.Fatalf("static generator returned %v, %v", got.Identity(), err)
	}

	_, err = (&StaticGenerator{}).Generate(context.Background(), testPassage(t))
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}
