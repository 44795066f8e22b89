package questions

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an instructor writing multiple-choice quizzes for adult learners on an online education platform.

Rules:
- Write exactly the requested number of questions on the given topic, at the given difficulty.
- Every question has between 2 and 6 options, exactly one of which is correct. Four options is typical.
- correct_option is the zero-based index of the correct option.
- Distractors should be plausible and reflect common misconceptions, not jokes or obviously wrong values.
- Do not use "all of the above" or "none of the above".
- Options within a question must be distinct.
- The explanation says why the correct option is right in two or three sentences.
- Do not repeat any question from the "already asked" list, and do not repeat questions within the quiz.`

// buildUserMessage constructs the user message for req. feedback, if not
// empty, describes why the previous attempt was rejected.
func buildUserMessage(req Request, cfg Config, feedback string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", req.Count)

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(req.Exclude, cfg.MaxPriorQuestions))

	if feedback != "" {
		b.WriteString("\n\nYour previous quiz was rejected: ")
		b.WriteString(feedback)
	}
	return b.String()
}
