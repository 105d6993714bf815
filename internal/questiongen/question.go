// Package questiongen produces the comprehension question set for a
// passage and normalizes whatever shape the generator returns into a
// fixed, validated Set.
package questiongen

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Difficulty is the generator's difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known labels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// TypeShortAnswer is the only question type produced.
const TypeShortAnswer = "short-answer"

// Question is one immutable comprehension question.
type Question struct {
	ID             string     `json:"id"`
	Text           string     `json:"question"`
	ExpectedAnswer string     `json:"correctAnswer"`
	Explanation    string     `json:"explanation"`
	Difficulty     Difficulty `json:"difficulty"`
	PassageExcerpt string     `json:"relevantPassageExcerpt,omitempty"`
	Hint           string     `json:"hint,omitempty"`
	Type           string     `json:"type"`
}

// Set is the ordered question list for one session.
type Set struct {
	PassageID string     `json:"passageId"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions.
func (s Set) Len() int { return len(s.Questions) }

// Identity is the deterministic key of the set: its ordered ids joined.
func (s Set) Identity() string {
	ids := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.ID
	}
	return strings.Join(ids, "|")
}

// questionID numbers a question by position and suffixes a short digest
// of its text, so two different sets never share an identity.
func questionID(pos int, text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return fmt.Sprintf("q%d-%s", pos+1, hex.EncodeToString(sum[:3]))
}
