package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/store"
)

type generateRequest struct {
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
	UserID        string `json:"userId"`
}

// quizInfo describes the quiz behind a session without its answers.
type quizInfo struct {
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Topic            string `json:"topic"`
	Difficulty       string `json:"difficulty"`
	TotalQuestions   int    `json:"total_questions"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	PassingScore     int    `json:"passing_score"`
}

type sessionResponse struct {
	Quiz    quizInfo  `json:"quiz"`
	Session quiz.View `json:"session"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	q, err := s.opts.Provider.Quiz(r.Context(), questions.Request{
		Topic:      req.Topic,
		Difficulty: questions.Difficulty(req.Difficulty),
		Count:      req.QuestionCount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess, err := q.NewSession(quiz.WithClock(s.opts.Clock))
	if err != nil {
		writeError(w, r, err)
		return
	}
	ls := s.newLiveSession(q, strings.TrimSpace(req.UserID))
	s.add(sess, ls)

	writeJSON(w, http.StatusCreated, sessionResponse{
		Quiz:    s.info(ls),
		Session: sess.Snapshot(),
	})
}

func (s *Server) info(ls *liveSession) quizInfo {
	return quizInfo{
		Title:            ls.quiz.Title,
		Description:      ls.quiz.Description,
		Topic:            ls.quiz.Topic,
		Difficulty:       string(ls.quiz.Difficulty),
		TotalQuestions:   len(ls.quiz.Questions),
		TimeLimitSeconds: ls.quiz.TimeLimitSeconds,
		PassingScore:     s.passingScore(ls),
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(*quiz.Session) error { return nil })
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, (*quiz.Session).Start)
}

type selectRequest struct {
	OptionIndex *int `json:"optionIndex"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OptionIndex == nil {
		writeMessage(w, http.StatusBadRequest, "optionIndex is required")
		return
	}
	s.mutate(w, r, func(sess *quiz.Session) error {
		return sess.SelectAnswer(*req.OptionIndex)
	})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, (*quiz.Session).Next)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, (*quiz.Session).Previous)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, (*quiz.Session).Complete)
}

// mutate runs op on the session named in the URL under its lock, records
// the result if op completed the session, and replies with the new view.
// Watchers are notified while the lock is held so they see views in
// order.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op func(*quiz.Session) error) {
	id := chi.URLParam(r, "id")
	ls := s.lookup(id)

	var view quiz.View
	err := s.registry.Do(id, func(sess *quiz.Session) error {
		if err := op(sess); err != nil {
			return err
		}
		s.recordIfDone(r.Context(), sess, ls)
		view = sess.Snapshot()
		if r.Method != http.MethodGet {
			s.hub.Broadcast(id, view)
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := sessionResponse{Session: view}
	if ls != nil {
		resp.Quiz = s.info(ls)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ls := s.lookup(id)

	var res *quiz.ScoreResult
	err := s.registry.Do(id, func(sess *quiz.Session) error {
		var err error
		res, err = sess.Score(s.passingScore(ls))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type attemptResponse struct {
	ID             int                   `json:"id"`
	SessionID      string                `json:"session_id"`
	UserID         string                `json:"user_id"`
	Title          string                `json:"title"`
	Topic          string                `json:"topic"`
	Difficulty     string                `json:"difficulty"`
	PercentScore   int                   `json:"percent_score"`
	CorrectCount   int                   `json:"correct_count"`
	TotalQuestions int                   `json:"total_questions"`
	Passed         bool                  `json:"passed"`
	TotalPoints    int                   `json:"total_points"`
	Feedback       string                `json:"feedback"`
	ElapsedSeconds int                   `json:"elapsed_seconds"`
	AutoSubmitted  bool                  `json:"auto_submitted"`
	CompletedAt    time.Time             `json:"completed_at"`
	Answers        []store.AttemptAnswer `json:"answers"`
}

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	if s.opts.Attempts == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Attempt history is not configured")
		return
	}
	opts, ok := attemptQuery(w, r)
	if !ok {
		return
	}
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	recs, err := s.opts.Attempts.ListAttempts(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]attemptResponse, len(recs))
	for i := range recs {
		out[i] = newAttemptResponse(&recs[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	if s.opts.Attempts == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Attempt history is not configured")
		return
	}
	rec, err := s.opts.Attempts.GetAttempt(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rec == nil {
		writeMessage(w, http.StatusNotFound, "Attempt not found")
		return
	}
	writeJSON(w, http.StatusOK, newAttemptResponse(rec))
}

func newAttemptResponse(rec *store.AttemptRecord) attemptResponse {
	return attemptResponse{
		ID:             rec.ID,
		SessionID:      rec.SessionID,
		UserID:         rec.UserID,
		Title:          rec.Title,
		Topic:          rec.Topic,
		Difficulty:     rec.Difficulty,
		PercentScore:   rec.PercentScore,
		CorrectCount:   rec.CorrectCount,
		TotalQuestions: rec.TotalQuestions,
		Passed:         rec.Passed,
		TotalPoints:    quiz.Points(rec.CorrectCount),
		Feedback:       quiz.FeedbackFor(rec.PercentScore, rec.Passed),
		ElapsedSeconds: rec.ElapsedSeconds,
		AutoSubmitted:  rec.AutoSubmitted,
		CompletedAt:    rec.CompletedAt.UTC(),
		Answers:        rec.Answers,
	}
}

func (s *Server) handleAttemptStats(w http.ResponseWriter, r *http.Request) {
	if s.opts.Attempts == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Attempt history is not configured")
		return
	}
	opts, ok := attemptQuery(w, r)
	if !ok {
		return
	}
	st, err := s.opts.Attempts.AttemptStats(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalAttempts": st.Attempts,
		"bestScore":     st.BestScore,
		"averageScore":  st.AverageScore,
		"passCount":     st.PassCount,
	})
}

func attemptQuery(w http.ResponseWriter, r *http.Request) (store.QueryOpts, bool) {
	q := r.URL.Query()
	opts := store.QueryOpts{
		Topic:  q.Get("topic"),
		UserID: q.Get("user"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return opts, false
		}
		opts.Limit = n
	}
	return opts, true
}
