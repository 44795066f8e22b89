package questions

import (
	"fmt"
	"strings"
)

// Validator checks a generated quiz before it is handed to a session.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier, e.g. "structural".
	Name() string

	// Validate returns nil if q passes for req.
	Validate(q *Quiz, req Request) *ValidationError
}

// ValidationError describes why a generated quiz was rejected.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Retryable bool   // Whether regeneration is likely to fix this
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// Length limits for generated text.
const (
	maxPromptLength      = 500
	maxOptionLength      = 200
	maxExplanationLength = 1000
)

// StructuralValidator checks question count, text lengths, option counts
// and answer indexes.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Quiz, req Request) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	if req.Count > 0 && len(q.Questions) != req.Count {
		return fail("got %d questions, want %d", len(q.Questions), req.Count)
	}
	for i, qq := range q.Questions {
		n := i + 1
		switch {
		case strings.TrimSpace(qq.Prompt) == "":
			return fail("question %d: prompt is empty", n)
		case len(qq.Prompt) > maxPromptLength:
			return fail("question %d: prompt exceeds %d characters", n, maxPromptLength)
		case strings.TrimSpace(qq.Explanation) == "":
			return fail("question %d: explanation is empty", n)
		case len(qq.Explanation) > maxExplanationLength:
			return fail("question %d: explanation exceeds %d characters", n, maxExplanationLength)
		case len(qq.Options) < 2:
			return fail("question %d: has %d options, need at least 2", n, len(qq.Options))
		case !qq.HasOption(qq.CorrectOption):
			return fail("question %d: correct_option %d out of range", n, qq.CorrectOption)
		}

		seen := make(map[string]bool, len(qq.Options))
		for _, opt := range qq.Options {
			key := normalize(opt)
			if key == "" {
				return fail("question %d: empty option", n)
			}
			if len(opt) > maxOptionLength {
				return fail("question %d: option exceeds %d characters", n, maxOptionLength)
			}
			if seen[key] {
				return fail("question %d: duplicate option %q", n, opt)
			}
			seen[key] = true
		}
	}
	return nil
}

// DuplicateValidator rejects quizzes that repeat a prompt, either within
// the quiz or from req.Exclude.
type DuplicateValidator struct{}

func (v *DuplicateValidator) Name() string { return "duplicate" }

func (v *DuplicateValidator) Validate(q *Quiz, req Request) *ValidationError {
	seen := make(map[string]bool, len(q.Questions)+len(req.Exclude))
	for _, p := range req.Exclude {
		seen[normalize(p)] = true
	}
	for i, qq := range q.Questions {
		key := normalize(qq.Prompt)
		if seen[key] {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("question %d repeats %q", i+1, qq.Prompt),
				Retryable: true,
			}
		}
		seen[key] = true
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
