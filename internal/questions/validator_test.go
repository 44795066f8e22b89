package questions

import (
	"strings"
	"testing"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

func validQuiz() *Quiz {
	return &Quiz{Questions: []quiz.Question{
		{ID: 1, Prompt: "Mean of 2 and 4?", Options: []string{"2", "3", "4"}, CorrectOption: 1, Explanation: "(2+4)/2 = 3"},
		{ID: 2, Prompt: "Median of 1, 5, 9?", Options: []string{"1", "5"}, CorrectOption: 1, Explanation: "The middle value."},
	}}
}

func TestStructuralValidator(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(q *Quiz)
		count   int
		wantMsg string
	}{
		{"valid", func(*Quiz) {}, 2, ""},
		{"count ignored when zero", func(*Quiz) {}, 0, ""},
		{"wrong count", func(*Quiz) {}, 5, "got 2 questions"},
		{"empty prompt", func(q *Quiz) { q.Questions[0].Prompt = " " }, 2, "prompt is empty"},
		{"long prompt", func(q *Quiz) { q.Questions[0].Prompt = strings.Repeat("x", 501) }, 2, "prompt exceeds"},
		{"empty explanation", func(q *Quiz) { q.Questions[1].Explanation = "" }, 2, "explanation is empty"},
		{"one option", func(q *Quiz) { q.Questions[1].Options = []string{"5"}; q.Questions[1].CorrectOption = 0 }, 2, "need at least 2"},
		{"correct out of range", func(q *Quiz) { q.Questions[0].CorrectOption = 3 }, 2, "out of range"},
		{"negative correct", func(q *Quiz) { q.Questions[0].CorrectOption = -1 }, 2, "out of range"},
		{"blank option", func(q *Quiz) { q.Questions[0].Options[2] = "" }, 2, "empty option"},
		{"duplicate option", func(q *Quiz) { q.Questions[0].Options[2] = " 3 " }, 2, "duplicate option"},
	}

	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuiz()
			tt.mutate(q)
			verr := v.Validate(q, Request{Count: tt.count})
			if tt.wantMsg == "" {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if !verr.Retryable || verr.Validator != "structural" {
				t.Errorf("error = %+v", verr)
			}
			if !strings.Contains(verr.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestDuplicateValidator(t *testing.T) {
	v := &DuplicateValidator{}

	if verr := v.Validate(validQuiz(), Request{}); verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}

	q := validQuiz()
	q.Questions[1].Prompt = "mean of 2  and 4?"
	if verr := v.Validate(q, Request{}); verr == nil {
		t.Fatal("expected in-quiz duplicate to be rejected")
	}

	if verr := v.Validate(validQuiz(), Request{Exclude: []string{"MEDIAN of 1, 5, 9?"}}); verr == nil {
		t.Fatal("expected excluded prompt to be rejected")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Validator: "structural", Message: "bad"}
	if got := err.Error(); got != `validator "structural": bad` {
		t.Fatalf("Error() = %q", got)
	}
}
