package questiongen

import (
	"fmt"
	"strings"

	"github.com/Oiubrab/edaccelerator-learning-assessment/internal/passage"
)

const systemPrompt = `You are an expert educational content creator specializing in reading comprehension assessment. Generate questions that:

REQUIREMENTS:
1. Test genuine understanding through synthesis and analysis
2. Are specific and answerable (never broad or vague)
3. Mix difficulty levels: easy, medium and hard
4. Expect short but specific answers, typically 2-8 words
5. Have a concrete correct answer that can be found in the passage
6. Include an explanation that references the passage
7. Avoid general or philosophical questions

QUESTION QUALITY:
- Good: "What is the primary role of the queen bee?" (Answer: "to lay eggs")
- Bad: "What does the passage suggest about organization?" (too vague)
- Good: "How do worker bees' duties change as they age?" (specific progression)
- Bad: "What is the overall message?" (too broad)

For each question provide:
- question: the question text
- correctAnswer: the expected answer, short and specific
- explanation: why the answer is correct, citing the passage
- difficulty: easy, medium or hard
- relevantPassageExcerpt: a short excerpt copied verbatim from the passage that contains the answer
- hint: guides the student to the right section WITHOUT revealing the answer (e.g. "Look at the section about the queen bee's main responsibilities", not "The queen lays eggs")`

// buildUserMessage renders the passage into the generation request.
func buildUserMessage(p *passage.Passage, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate exactly %d reading comprehension questions for this passage.\n\n", count)
	fmt.Fprintf(&b, "Title: %s\n\n", p.Title)
	for _, c := range p.Chunks {
		if c.Heading != "" {
			fmt.Fprintf(&b, "## %s\n", c.Heading)
		}
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	b.WriteString(`Return ONLY valid JSON: an object with a "questions" array.`)

	return b.String()
}
