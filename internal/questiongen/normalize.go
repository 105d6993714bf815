package questiongen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// questionOutput is one question as the generator returns it.
type questionOutput struct {
	Question               string `json:"question"`
	CorrectAnswer          string `json:"correctAnswer"`
	Explanation            string `json:"explanation"`
	Difficulty             string `json:"difficulty"`
	RelevantPassageExcerpt string `json:"relevantPassageExcerpt"`
	Hint                   string `json:"hint"`
}

var errNoQuestionList = errors.New("response contains no question list")

// decodeQuestions accepts the response shapes generators are known to
// produce: {"questions":[...]}, a bare array, or an object whose first
// array-valued member holds the questions.
func decodeQuestions(raw json.RawMessage) ([]questionOutput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errNoQuestionList
	}

	list := raw
	if raw[0] == '{' {
		var wrapped struct {
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(wrapped.Questions) > 0 && wrapped.Questions[0] == '[' {
			list = wrapped.Questions
		} else {
			first, err := firstArrayMember(raw)
			if err != nil {
				return nil, err
			}
			list = first
		}
	}

	var out []questionOutput
	if err := json.Unmarshal(list, &out); err != nil {
		return nil, fmt.Errorf("decode question list: %w", err)
	}
	return out, nil
}

// firstArrayMember walks a JSON object in document order and returns the
// first member whose value is an array.
func firstArrayMember(raw json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for dec.More() {
		if _, err := dec.Token(); err != nil { // member name
			return nil, fmt.Errorf("decode response: %w", err)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(v) > 0 && v[0] == '[' {
			return v, nil
		}
	}
	return nil, errNoQuestionList
}

// toQuestions assigns positional ids and trims every field.
func toQuestions(outs []questionOutput) []Question {
	qs := make([]Question, len(outs))
	for i, o := range outs {
		text := strings.TrimSpace(o.Question)
		qs[i] = Question{
			ID:             questionID(i, text),
			Text:           text,
			ExpectedAnswer: strings.TrimSpace(o.CorrectAnswer),
			Explanation:    strings.TrimSpace(o.Explanation),
			Difficulty:     Difficulty(strings.ToLower(strings.TrimSpace(o.Difficulty))),
			PassageExcerpt: strings.TrimSpace(o.RelevantPassageExcerpt),
			Hint:           strings.TrimSpace(o.Hint),
			Type:           TypeShortAnswer,
		}
	}
	return qs
}
