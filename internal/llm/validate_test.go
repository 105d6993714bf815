package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var verdictTestSchema = &Schema{
	Name: "validate-test-verdict",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect":  map[string]any{"type": "boolean"},
			"feedback":   map[string]any{"type": "string"},
			"difficulty": map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
		},
		"required":             []string{"isCorrect", "feedback"},
		"additionalProperties": false,
	},
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"isCorrect":true,"feedback":"Well done"}`, false},
		{"valid with optional", `{"isCorrect":false,"feedback":"No","difficulty":"hard"}`, false},
		{"missing required", `{"isCorrect":true}`, true},
		{"wrong type", `{"isCorrect":"yes","feedback":"x"}`, true},
		{"bad enum", `{"isCorrect":true,"feedback":"x","difficulty":"trivial"}`, true},
		{"extra property", `{"isCorrect":true,"feedback":"x","score":3}`, true},
		{"malformed", `{"isCorrect":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(verdictTestSchema, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`not json`)); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}
