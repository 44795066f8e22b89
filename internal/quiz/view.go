package quiz

import "time"

// View is a serializable snapshot of a session for display. The correct
// option and explanation of each question are only revealed once the
// session is completed.
type View struct {
	ID               string         `json:"id"`
	Phase            string         `json:"phase"`
	CurrentIndex     int            `json:"current_index"`
	TotalQuestions   int            `json:"total_questions"`
	Question         QuestionView   `json:"question"`
	Selection        int            `json:"selection"`
	Answers          []int          `json:"answers"`
	RemainingSeconds int            `json:"remaining_seconds"`
	TimeLimitSeconds int            `json:"time_limit_seconds"`
	AutoSubmitted    bool           `json:"auto_submitted"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	Review           []QuestionView `json:"review,omitempty"`
}

// QuestionView is a question as shown to the learner.
type QuestionView struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption *int     `json:"correct_option,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Snapshot returns the current View of the session. Answers has one entry
// per question; questions without a recorded entry show Unanswered.
func (s *Session) Snapshot() View {
	done := s.phase == PhaseCompleted
	v := View{
		ID:               s.id,
		Phase:            s.phase.String(),
		CurrentIndex:     s.current,
		TotalQuestions:   len(s.questions),
		Question:         questionView(s.questions[s.current], done),
		Selection:        s.selection,
		Answers:          make([]int, len(s.questions)),
		RemainingSeconds: s.remaining,
		TimeLimitSeconds: s.timeLimit,
		AutoSubmitted:    s.autoSubmitted,
	}
	for i := range s.questions {
		if a, ok := s.answers[i]; ok {
			v.Answers[i] = a
		} else {
			v.Answers[i] = Unanswered
		}
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		v.StartedAt = &t
	}
	if done {
		t := s.completedAt
		v.CompletedAt = &t
		v.Review = make([]QuestionView, len(s.questions))
		for i, q := range s.questions {
			v.Review[i] = questionView(q, true)
		}
	}
	return v
}

func questionView(q Question, reveal bool) QuestionView {
	qv := QuestionView{
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: append([]string(nil), q.Options...),
	}
	if reveal {
		c := q.CorrectOption
		qv.CorrectOption = &c
		qv.Explanation = q.Explanation
	}
	return qv
}
