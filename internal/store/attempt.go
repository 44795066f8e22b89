package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ErrDuplicateAttempt is returned when an attempt for the session was
// already saved.
var ErrDuplicateAttempt = errors.New("attempt already recorded for session")

const attemptsTable = "quiz_attempts"

var attemptColumns = []string{
	"id", "sequence", "timestamp", "session_id", "user_id", "title", "topic",
	"difficulty", "percent_score", "correct_count", "total_questions",
	"passing_score", "passed", "elapsed_seconds", "auto_submitted", "answers",
}

// attemptRepo implements AttemptRepo backed by the ent SQL driver.
type attemptRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *attemptRepo) SaveAttempt(ctx context.Context, data AttemptData) (*AttemptRecord, error) {
	if data.SessionID == "" {
		return nil, fmt.Errorf("save attempt: empty session id")
	}

	existing, err := r.GetAttempt(ctx, data.SessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("save attempt %s: %w", data.SessionID, ErrDuplicateAttempt)
	}

	answers := data.Answers
	if answers == nil {
		answers = []AttemptAnswer{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal attempt answers: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("next sequence: %w", err)
	}

	completedAt := data.CompletedAt.UTC()
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(attemptsTable).
		Columns(attemptColumns[1:]...).
		Values(
			seqNum,
			completedAt,
			data.SessionID,
			data.UserID,
			data.Title,
			data.Topic,
			data.Difficulty,
			data.PercentScore,
			data.CorrectCount,
			data.TotalQuestions,
			data.PassingScore,
			data.Passed,
			data.ElapsedSeconds,
			data.AutoSubmitted,
			string(answersJSON),
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	rec := &AttemptRecord{ID: int(id), Sequence: seqNum, AttemptData: data}
	rec.CompletedAt = completedAt
	rec.Answers = answers
	return rec, nil
}

func (r *attemptRepo) ListAttempts(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		OrderBy(entsql.Desc("sequence"))
	applyAttemptFilters(sel, opts)
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var records []AttemptRecord
	for rows.Next() {
		rec, err := scanAttempt(&rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	return records, nil
}

func (r *attemptRepo) GetAttempt(ctx context.Context, sessionID string) (*AttemptRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		Where(entsql.EQ("session_id", sessionID)).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanAttempt(&rows)
}

func (r *attemptRepo) AttemptStats(ctx context.Context, opts QueryOpts) (*AttemptStats, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(
			entsql.Count("*"),
			entsql.Max("percent_score"),
			entsql.Avg("percent_score"),
			entsql.Sum("passed"),
		).
		From(entsql.Table(attemptsTable))
	applyAttemptFilters(sel, opts)

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query attempt stats: %w", err)
	}
	defer rows.Close()

	stats := &AttemptStats{}
	if !rows.Next() {
		return stats, rows.Err()
	}

	var (
		best   sql.NullInt64
		avg    sql.NullFloat64
		passed sql.NullInt64
	)
	if err := rows.Scan(&stats.Attempts, &best, &avg, &passed); err != nil {
		return nil, fmt.Errorf("scan attempt stats: %w", err)
	}
	stats.BestScore = int(best.Int64)
	stats.AverageScore = avg.Float64
	stats.PassCount = int(passed.Int64)
	return stats, nil
}

func applyAttemptFilters(sel *entsql.Selector, opts QueryOpts) {
	if opts.Topic != "" {
		sel.Where(entsql.EQ("topic", opts.Topic))
	}
	if opts.UserID != "" {
		sel.Where(entsql.EQ("user_id", opts.UserID))
	}
}

func scanAttempt(rows *entsql.Rows) (*AttemptRecord, error) {
	var (
		rec     AttemptRecord
		answers string
	)
	err := rows.Scan(
		&rec.ID,
		&rec.Sequence,
		&rec.CompletedAt,
		&rec.SessionID,
		&rec.UserID,
		&rec.Title,
		&rec.Topic,
		&rec.Difficulty,
		&rec.PercentScore,
		&rec.CorrectCount,
		&rec.TotalQuestions,
		&rec.PassingScore,
		&rec.Passed,
		&rec.ElapsedSeconds,
		&rec.AutoSubmitted,
		&answers,
	)
	if err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal attempt answers: %w", err)
	}
	return &rec, nil
}
