package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillgenie/skillgenie/internal/config"
	"github.com/skillgenie/skillgenie/internal/llm"
	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/results"
	"github.com/skillgenie/skillgenie/internal/store"
)

// registerProviderFlags adds the flags that pick where questions come from.
func registerProviderFlags(cmd *cobra.Command) {
	cmd.Flags().String("bank", "", "YAML question bank to use instead of the built-in one (overrides SKILLGENIE_BANK)")
	cmd.Flags().Bool("ai", false, "Generate questions with the configured LLM, falling back to the bank")
}

// buildProvider returns the question provider selected by --bank and --ai.
// With --ai, LLM generation is tried first and the bank serves as a
// fallback. A missing LLM configuration is reported and the bank is used.
func buildProvider(ctx context.Context, cmd *cobra.Command, cfg config.Config, events store.EventRepo) (questions.Provider, error) {
	bankPath := cfg.BankPath
	if p, _ := cmd.Flags().GetString("bank"); p != "" {
		bankPath = p
	}

	var bank *questions.Quiz
	if bankPath != "" {
		b, err := questions.LoadBank(bankPath)
		if err != nil {
			return nil, err
		}
		bank = b
	}
	bp := questions.NewBankProvider(bank)
	bp.SecondsPerQuestion = cfg.SecondsPerQuestion
	bp.PassingScore = cfg.PassingScore

	if ai, _ := cmd.Flags().GetBool("ai"); !ai {
		return bp, nil
	}

	llmCfg, ok := llm.ResolveConfig()
	if !ok {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; using the question bank.")
		return bp, nil
	}
	provider, err := llm.NewProvider(ctx, llmCfg, events)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider unavailable:", err)
		fmt.Fprintln(os.Stderr, "Using the question bank.")
		return bp, nil
	}

	genCfg := questions.DefaultConfig()
	genCfg.SecondsPerQuestion = cfg.SecondsPerQuestion
	genCfg.PassingScore = cfg.PassingScore

	fp := questions.NewFallbackProvider(questions.NewLLMGenerator(provider, genCfg), bp)
	fp.OnFallback = func(err error) {
		fmt.Fprintln(os.Stderr, "Question generation failed, using the question bank:", err)
	}
	return fp, nil
}

// buildSink returns the result sink: the attempt store, plus Redis
// publishing when SKILLGENIE_REDIS_URL is set. The returned cleanup closes
// the Redis client.
func buildSink(ctx context.Context, cfg config.Config, st *store.Store) (results.Sink, func(), error) {
	sinks := results.Multi{results.NewStoreSink(st.AttemptRepo())}
	if cfg.RedisURL == "" {
		return sinks, func() {}, nil
	}

	client, err := results.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	sinks = append(sinks, results.NewRedisSink(client))
	return sinks, func() { client.Close() }, nil
}
