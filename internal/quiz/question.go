package quiz

import "fmt"

// Question is a single multiple-choice question. It is immutable once a
// session has been created from it.
type Question struct {
	// ID identifies the question within a session. IDs must be unique.
	ID int `json:"id" yaml:"id"`

	// Prompt is the question text shown to the learner.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Options are the answer choices in display order. At least two.
	Options []string `json:"options" yaml:"options"`

	// CorrectOption is the index into Options of the correct answer.
	CorrectOption int `json:"correct_option" yaml:"correct_option"`

	// Explanation is the worked reasoning revealed during review.
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// MinOptions is the minimum number of options a question must offer.
const MinOptions = 2

// Validate checks that the question has enough options and that
// CorrectOption points at one of them.
func (q Question) Validate() error {
	if len(q.Options) < MinOptions {
		return &InvalidInputError{
			Field:  "options",
			Reason: fmt.Sprintf("question %d has %d options, need at least %d", q.ID, len(q.Options), MinOptions),
		}
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return &InvalidInputError{
			Field:  "correct_option",
			Reason: fmt.Sprintf("question %d: correct option %d out of range [0, %d)", q.ID, q.CorrectOption, len(q.Options)),
		}
	}
	return nil
}

// HasOption reports whether i is a valid option index for q.
func (q Question) HasOption(i int) bool {
	return i >= 0 && i < len(q.Options)
}

// ValidateQuestions checks a full question sequence: it must be non-empty,
// every question must be well-formed, and IDs must be unique.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return &InvalidInputError{Field: "questions", Reason: "at least one question is required"}
	}
	seen := make(map[int]bool, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen[q.ID] {
			return &InvalidInputError{
				Field:  "id",
				Reason: fmt.Sprintf("duplicate question id %d", q.ID),
			}
		}
		seen[q.ID] = true
	}
	return nil
}
