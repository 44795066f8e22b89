package questions

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

//go:embed banks/statistics.yaml
var statisticsBank []byte

// DefaultBank returns the built-in "Statistics & Probability" bank.
func DefaultBank() *Quiz {
	b, err := ParseBank(statisticsBank)
	if err != nil {
		panic(fmt.Sprintf("questions: built-in bank: %v", err))
	}
	return b
}

// LoadBank reads a YAML bank file.
func LoadBank(path string) (*Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := ParseBank(data)
	if err != nil {
		return nil, fmt.Errorf("bank %s: %w", path, err)
	}
	return b, nil
}

// bankSettings holds the optional bank-level settings whose zero value
// would otherwise be indistinguishable from "not set".
type bankSettings struct {
	PassingScore *int `yaml:"passing_score"`
}

// ParseBank decodes and validates a YAML bank. Unknown keys are rejected.
// An omitted passing_score means the provider default; an explicit one must
// be between 1 and 100.
func ParseBank(data []byte) (*Quiz, error) {
	var b Quiz
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("parse bank: %w", err)
	}
	var settings bankSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse bank: %w", err)
	}
	if err := quiz.ValidateQuestions(b.Questions); err != nil {
		return nil, err
	}
	if b.TimeLimitSeconds < 0 {
		return nil, &quiz.InvalidInputError{Field: "time_limit_seconds", Reason: "must not be negative"}
	}
	if settings.PassingScore != nil && (b.PassingScore < 1 || b.PassingScore > 100) {
		return nil, &quiz.InvalidInputError{Field: "passing_score", Reason: fmt.Sprintf("%d not in [1, 100]", b.PassingScore)}
	}
	return &b, nil
}

// WriteBank encodes q as a YAML bank file.
func WriteBank(w io.Writer, q *Quiz) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(q); err != nil {
		return fmt.Errorf("encode bank: %w", err)
	}
	return enc.Close()
}

// BankProvider serves quizzes from a fixed question bank. The request
// topic is only validated; the bank's own topic and title are used.
type BankProvider struct {
	bank *Quiz

	// SecondsPerQuestion is used when the bank has no time limit of its
	// own.
	SecondsPerQuestion int

	// PassingScore is used when the bank has no passing score of its own.
	PassingScore int
}

// NewBankProvider creates a BankProvider for bank. A nil bank means the
// built-in one.
func NewBankProvider(bank *Quiz) *BankProvider {
	if bank == nil {
		bank = DefaultBank()
	}
	return &BankProvider{
		bank:               bank,
		SecondsPerQuestion: DefaultSecondsPerQuestion,
		PassingScore:       quiz.DefaultPassingScore,
	}
}

// Quiz returns the first req.Count questions of the bank. A zero count, or
// one larger than the bank, yields the whole bank.
func (p *BankProvider) Quiz(_ context.Context, req Request) (*Quiz, error) {
	req.Topic = orDefault(req.Topic, DefaultTopic)
	if req.Difficulty == "" {
		req.Difficulty = DefaultDifficulty
	}
	if err := req.validateTopic(); err != nil {
		return nil, err
	}
	if err := req.validateDifficulty(); err != nil {
		return nil, err
	}
	if req.Count < 0 {
		return nil, &quiz.InvalidInputError{Op: "generate", Field: "questionCount", Reason: "must not be negative"}
	}

	n := len(p.bank.Questions)
	if req.Count > 0 && req.Count < n {
		n = req.Count
	}

	perQuestion := p.SecondsPerQuestion
	if p.bank.TimeLimitSeconds > 0 {
		perQuestion = max(1, p.bank.TimeLimitSeconds/len(p.bank.Questions))
	}
	passing := p.PassingScore
	if p.bank.PassingScore > 0 {
		passing = p.bank.PassingScore
	}

	out := &Quiz{
		Title:            p.bank.Title,
		Description:      p.bank.Description,
		Topic:            orDefault(p.bank.Topic, req.Topic),
		Difficulty:       p.bank.Difficulty,
		TimeLimitSeconds: n * perQuestion,
		PassingScore:     passing,
		Questions:        cloneQuestions(p.bank.Questions[:n]),
	}
	if out.Title == "" {
		out.Title = titleFor(out.Topic)
	}
	if out.Difficulty == "" {
		out.Difficulty = req.Difficulty
	}
	return out, nil
}

func cloneQuestions(qs []quiz.Question) []quiz.Question {
	out := make([]quiz.Question, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
