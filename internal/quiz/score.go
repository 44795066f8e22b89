package quiz

import "time"

// DefaultPassingScore is the percent score needed to pass when no other
// threshold is configured.
const DefaultPassingScore = 70

// PointsPerCorrect is awarded for each correctly answered question.
const PointsPerCorrect = 15

// ExcellentScore is the percent score at which a pass earns top feedback.
const ExcellentScore = 90

// Feedback messages by outcome.
const (
	FeedbackExcellent = "Excellent work! Outstanding performance!"
	FeedbackPassed    = "Great job! You passed the quiz!"
	FeedbackFailed    = "Good effort! Review the topics and try again."
)

// QuestionResult is the graded outcome of one question.
type QuestionResult struct {
	QuestionIndex  int  `json:"question_index"`
	QuestionID     int  `json:"question_id"`
	SelectedOption int  `json:"selected_option"` // Unanswered if none
	CorrectOption  int  `json:"correct_option"`
	IsCorrect      bool `json:"is_correct"`
	Points         int  `json:"points"`
}

// ScoreResult summarizes a completed session.
type ScoreResult struct {
	SessionID      string           `json:"session_id"`
	PercentScore   int              `json:"percent_score"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	PassingScore   int              `json:"passing_score"`
	Passed         bool             `json:"passed"`
	TotalPoints    int              `json:"total_points"`
	Feedback       string           `json:"feedback"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
	AutoSubmitted  bool             `json:"auto_submitted"`
	CompletedAt    time.Time        `json:"completed_at"`
	PerQuestion    []QuestionResult `json:"per_question"`
}

// Score grades a completed session against passingScore. An unanswered
// question is always incorrect.
func (s *Session) Score(passingScore int) (*ScoreResult, error) {
	if s.phase != PhaseCompleted {
		return nil, &InvalidStateError{Op: "score", Phase: s.phase}
	}

	n := len(s.questions)
	res := &ScoreResult{
		SessionID:      s.id,
		TotalQuestions: n,
		PassingScore:   passingScore,
		ElapsedSeconds: s.ElapsedSeconds(),
		AutoSubmitted:  s.autoSubmitted,
		CompletedAt:    s.completedAt,
		PerQuestion:    make([]QuestionResult, n),
	}

	for i, q := range s.questions {
		selected, ok := s.answers[i]
		if !ok {
			selected = Unanswered
		}
		correct := selected != Unanswered && selected == q.CorrectOption
		qr := QuestionResult{
			QuestionIndex:  i,
			QuestionID:     q.ID,
			SelectedOption: selected,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      correct,
		}
		if correct {
			res.CorrectCount++
			qr.Points = PointsPerCorrect
		}
		res.PerQuestion[i] = qr
	}

	res.PercentScore = PercentScore(res.CorrectCount, n)
	res.Passed = res.PercentScore >= passingScore
	res.TotalPoints = Points(res.CorrectCount)
	res.Feedback = FeedbackFor(res.PercentScore, res.Passed)
	return res, nil
}

// Points returns the points earned for correct answers.
func Points(correct int) int {
	return correct * PointsPerCorrect
}

// FeedbackFor returns the feedback message for a graded attempt.
func FeedbackFor(percent int, passed bool) string {
	switch {
	case passed && percent >= ExcellentScore:
		return FeedbackExcellent
	case passed:
		return FeedbackPassed
	default:
		return FeedbackFailed
	}
}

// PercentScore returns round-half-up(100 * correct / total). It returns 0
// when total is not positive.
func PercentScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
