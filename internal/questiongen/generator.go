package questiongen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/llm"
	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
)

// Generator produces the question set for a passage. Errors are always
// *GenerationError.
type Generator interface {
	Generate(ctx context.Context, p *passage.Passage) (Set, error)
}

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Count is the number of questions requested.
	Count int

	// Validators run in order on the decoded set; the first failure wins.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// UseSchema sends QuestionSetSchema with the request. Without it the
	// model is only asked for JSON and the response shape may vary.
	UseSchema bool

	// Timeout bounds one Generate call. Zero leaves the caller's deadline.
	Timeout time.Duration
}

// DefaultConfig returns the six-question configuration.
func DefaultConfig() Config {
	return Config{
		Count: 6,
		Validators: []Validator{
			&CountValidator{N: 6},
			&StructuralValidator{},
			&UniqueValidator{},
		},
		MaxTokens:   4096,
		Temperature: 0.7,
		UseSchema:   true,
	}
}

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

func (g *LLMGenerator) Generate(ctx context.Context, p *passage.Passage) (Set, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGeneration)
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildUserMessage(p, g.config.Count)),
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	if g.config.UseSchema {
		req.Schema = QuestionSetSchema
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return Set{}, &GenerationError{Stage: "request", Retryable: retryable(err), Err: err}
	}

	outs, err := decodeQuestions(resp.Content)
	if err != nil {
		return Set{}, &GenerationError{Stage: "decode", Retryable: true, Err: err}
	}

	qs := toQuestions(outs)
	for _, v := range g.config.Validators {
		if verr := v.Validate(qs); verr != nil {
			return Set{}, &GenerationError{Stage: "validate", Retryable: true, Err: verr}
		}
	}

	return Set{PassageID: p.ID, Questions: qs}, nil
}

// retryable is false only for failures another attempt cannot fix.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var mt *llm.ErrMaxTokensExceeded
	return !errors.As(err, &mt)
}

// StaticGenerator serves a fixed set, for offline use and tests.
type StaticGenerator struct {
	Set Set
}

func (g *StaticGenerator) Generate(_ context.Context, p *passage.Passage) (Set, error) {
	if g.Set.Len() == 0 {
		return Set{}, &GenerationError{Stage: "request", Err: fmt.Errorf("no questions available for %q", p.ID)}
	}
	return g.Set, nil
}
