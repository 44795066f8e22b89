package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillgenie/skillgenie/internal/questions"
	"github.com/skillgenie/skillgenie/internal/results"
	"github.com/skillgenie/skillgenie/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take a quiz in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	registerPlayFlags(playCmd)
}

func registerPlayFlags(cmd *cobra.Command) {
	registerProviderFlags(cmd)
	cmd.Flags().String("topic", questions.DefaultTopic, "Quiz topic")
	cmd.Flags().String("difficulty", string(questions.DefaultDifficulty), "Difficulty: easy, medium or hard")
	cmd.Flags().IntP("count", "n", questions.DefaultCount, "Number of questions")
	cmd.Flags().String("user", results.AnonymousUser, "User ID recorded with the result")
}

// requestFromFlags builds a generation request from --topic, --difficulty
// and --count.
func requestFromFlags(cmd *cobra.Command) questions.Request {
	topic, _ := cmd.Flags().GetString("topic")
	difficulty, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")
	return questions.Request{
		Topic:      topic,
		Difficulty: questions.Difficulty(difficulty),
		Count:      count,
	}
}

// runPlay opens the store, builds the quiz, and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := buildProvider(ctx, cmd, cfg, st.EventRepo())
	if err != nil {
		return err
	}
	q, err := provider.Quiz(ctx, requestFromFlags(cmd))
	if err != nil {
		return fmt.Errorf("build quiz: %w", err)
	}

	sink, closeSink, err := buildSink(ctx, cfg, st)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Result publishing unavailable:", err)
		sink, closeSink = results.NewStoreSink(st.AttemptRepo()), func() {}
	}
	defer closeSink()

	user, _ := cmd.Flags().GetString("user")
	m, err := tui.Run(q, tui.Options{Sink: sink, UserID: user})
	if err != nil {
		return err
	}
	if err := m.RecordErr(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: failed to save result:", err)
	}
	return nil
}
