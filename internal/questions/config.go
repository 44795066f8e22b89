package questions

import "github.com/skillgenie/skillgenie/internal/quiz"

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated quiz; the first failure
	// stops the pipeline.
	Validators []Validator

	// MaxAttempts bounds generation attempts when a validator reports a
	// retryable failure.
	MaxAttempts int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions caps the excluded prompts listed in the prompt.
	MaxPriorQuestions int

	SecondsPerQuestion int
	PassingScore       int
}

// DefaultConfig returns a Config with the standard validator chain and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&DuplicateValidator{},
		},
		MaxAttempts:        3,
		MaxTokens:          4096,
		Temperature:        0.7,
		MaxPriorQuestions:  20,
		SecondsPerQuestion: DefaultSecondsPerQuestion,
		PassingScore:       quiz.DefaultPassingScore,
	}
}
