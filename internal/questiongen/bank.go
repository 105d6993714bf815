package questiongen

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var bankYAML []byte

type bankEntry struct {
	Question      string `yaml:"question"`
	CorrectAnswer string `yaml:"correctAnswer"`
	Explanation   string `yaml:"explanation"`
	Difficulty    string `yaml:"difficulty"`
	Excerpt       string `yaml:"excerpt"`
	Hint          string `yaml:"hint"`
}

// Bank returns the pre-written question set for a built-in passage, used
// when no LLM provider is configured.
func Bank(passageID string) (Set, error) {
	var bank map[string][]bankEntry
	if err := yaml.Unmarshal(bankYAML, &bank); err != nil {
		return Set{}, fmt.Errorf("parse question bank: %w", err)
	}

	entries, ok := bank[passageID]
	if !ok {
		return Set{}, fmt.Errorf("no offline questions for passage %q", passageID)
	}

	outs := make([]questionOutput, len(entries))
	for i, e := range entries {
		outs[i] = questionOutput{
			Question:               e.Question,
			CorrectAnswer:          e.CorrectAnswer,
			Explanation:            e.Explanation,
			Difficulty:             e.Difficulty,
			RelevantPassageExcerpt: e.Excerpt,
			Hint:                   e.Hint,
		}
	}
	return Set{PassageID: passageID, Questions: toQuestions(outs)}, nil
}
