package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/skillgenie/skillgenie/internal/llm"
	"github.com/skillgenie/skillgenie/internal/quiz"
)

// LLMGenerator implements Provider by asking a language model to write
// the quiz.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// NewLLMGenerator creates an LLMGenerator with the given provider and config.
func NewLLMGenerator(provider llm.Provider, cfg Config) *LLMGenerator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.SecondsPerQuestion <= 0 {
		cfg.SecondsPerQuestion = DefaultSecondsPerQuestion
	}
	if cfg.PassingScore <= 0 {
		cfg.PassingScore = quiz.DefaultPassingScore
	}
	return &LLMGenerator{provider: provider, config: cfg}
}

// quizOutput is the raw LLM response before validation.
type quizOutput struct {
	Title     string           `json:"title"`
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation"`
}

// Quiz generates a quiz for req. A retryable validation failure triggers
// another generation with the failure fed back to the model, up to
// Config.MaxAttempts; the last validation error is returned.
func (g *LLMGenerator) Quiz(ctx context.Context, req Request) (*Quiz, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ctx = llm.WithTopic(llm.WithPurpose(ctx, llm.PurposeQuizGen), req.Topic)

	var feedback string
	for attempt := 1; ; attempt++ {
		q, err := g.generate(ctx, req, feedback)
		if err == nil {
			return q, nil
		}

		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable || attempt >= g.config.MaxAttempts {
			return nil, err
		}
		feedback = verr.Message
	}
}

func (g *LLMGenerator) generate(ctx context.Context, req Request, feedback string) (*Quiz, error) {
	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    llm.UserMessage(buildUserMessage(req, g.config, feedback)),
		Schema:      QuizSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw quizOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &Quiz{
		Title:            strings.TrimSpace(raw.Title),
		Description:      fmt.Sprintf("AI-generated quiz on %s", req.Topic),
		Topic:            req.Topic,
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: len(raw.Questions) * g.config.SecondsPerQuestion,
		PassingScore:     g.config.PassingScore,
		Questions:        make([]quiz.Question, len(raw.Questions)),
	}
	if q.Title == "" {
		q.Title = titleFor(req.Topic)
	}
	for i, rq := range raw.Questions {
		q.Questions[i] = quiz.Question{
			ID:            i + 1,
			Prompt:        strings.TrimSpace(rq.Prompt),
			Options:       rq.Options,
			CorrectOption: rq.CorrectOption,
			Explanation:   strings.TrimSpace(rq.Explanation),
		}
	}

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, req); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}
