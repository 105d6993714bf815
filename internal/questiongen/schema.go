package questiongen

import "github.com/Oiubrab/edaccelerator-learning-assessment/internal/llm"

// QuestionSetSchema is the structured-output contract for generation.
// Every property is required so OpenAI strict mode accepts it.
var QuestionSetSchema = &llm.Schema{
	Name:        "comprehension-questions",
	Description: "A set of short-answer reading comprehension questions about a passage",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "Clear, specific question text",
						},
						"correctAnswer": map[string]any{
							"type":        "string",
							"description": "Short, specific expected answer, typically 2-8 words",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Explanation that references the passage",
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []string{"easy", "medium", "hard"},
						},
						"relevantPassageExcerpt": map[string]any{
							"type":        "string",
							"description": "Short excerpt copied verbatim from the passage that contains the answer",
						},
						"hint": map[string]any{
							"type":        "string",
							"description": "Points to the right section without revealing the answer",
						},
					},
					"required": []string{
						"question", "correctAnswer", "explanation",
						"difficulty", "relevantPassageExcerpt", "hint",
					},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"questions"},
		"additionalProperties": false,
	},
}
