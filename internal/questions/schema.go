package questions

import "github.com/skillgenie/skillgenie/internal/llm"

// QuizSchema defines the JSON schema for LLM quiz generation responses.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A multiple-choice quiz with one correct option and an explanation per question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "A short quiz title",
			},
			"questions": map[string]any{
				"type":     "array",
				"minItems": MinCount,
				"maxItems": MaxCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question text shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"minItems":    2,
							"maxItems":    6,
							"description": "Answer choices in display order",
						},
						"correct_option": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "Zero-based index of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the correct option is right",
						},
					},
					"required":             []any{"prompt", "options", "correct_option", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "questions"},
		"additionalProperties": false,
	},
}
