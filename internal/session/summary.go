package session

import "github.com/Oiubrab/edaccelerator-learning-assessment/internal/history"

// Summary is the running score.
type Summary struct {
	Answered   int
	Correct    int
	Total      int
	Percentage int
}

func summarize(st State, total int) Summary {
	s := Summary{Answered: len(st.AnswerLog), Total: total}
	for _, a := range st.AnswerLog {
		if a.Correct {
			s.Correct++
		}
	}
	s.Percentage = history.Percentage(s.Correct, total)
	return s
}

// Band is the completion message for a percentage.
func Band(percentage int) string {
	switch {
	case percentage >= 80:
		return "Excellent Work!"
	case percentage >= 60:
		return "Good Effort!"
	default:
		return "Keep Practicing!"
	}
}
