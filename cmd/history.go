package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillgenie/skillgenie/internal/quiz"
	"github.com/skillgenie/skillgenie/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history [session-id]",
	Short: "List past quiz attempts, or show one attempt in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")
		user, _ := cmd.Flags().GetString("user")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		if len(args) == 1 {
			rec, err := s.AttemptRepo().GetAttempt(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get attempt: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("no attempt recorded for session %s", args[0])
			}
			writeAttempt(cmd.OutOrStdout(), rec)
			return nil
		}

		opts := store.QueryOpts{Limit: limit, Topic: topic, UserID: user}
		attempts, err := s.AttemptRepo().ListAttempts(ctx, opts)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No quiz attempts found.")
			return nil
		}

		fmt.Printf("%-19s  %-28s  %-10s  %6s  %7s  %6s  %s\n",
			"Completed", "Quiz", "User", "Score", "Correct", "Time", "Result")
		fmt.Println(strings.Repeat("─", 96))
		for _, a := range attempts {
			result := "pass"
			if !a.Passed {
				result = "fail"
			}
			if a.AutoSubmitted {
				result += " (timed out)"
			}
			fmt.Printf("%-19s  %-28s  %-10s  %5d%%  %3d/%-3d  %6s  %s\n",
				a.CompletedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(a.Title, 28),
				truncate(a.UserID, 10),
				a.PercentScore,
				a.CorrectCount, a.TotalQuestions,
				formatDuration(a.ElapsedSeconds),
				result,
			)
		}

		stats, err := s.AttemptRepo().AttemptStats(ctx, store.QueryOpts{Topic: topic, UserID: user})
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}
		fmt.Println(strings.Repeat("─", 96))
		fmt.Printf("Attempts: %d   Best: %d%%   Average: %.1f%%   Passed: %d\n",
			stats.Attempts, stats.BestScore, stats.AverageScore, stats.PassCount)
		return nil
	},
}

func writeAttempt(w io.Writer, a *store.AttemptRecord) {
	result := "passed"
	if !a.Passed {
		result = "not passed"
	}
	fmt.Fprintf(w, "%s (%s, %s)\n", a.Title, a.Topic, a.Difficulty)
	fmt.Fprintf(w, "Session:   %s\n", a.SessionID)
	fmt.Fprintf(w, "User:      %s\n", a.UserID)
	fmt.Fprintf(w, "Completed: %s\n", a.CompletedAt.Local().Format(timeLayout))
	fmt.Fprintf(w, "Score:     %d%% (%d/%d, %d points), %s\n",
		a.PercentScore, a.CorrectCount, a.TotalQuestions, quiz.Points(a.CorrectCount), result)
	fmt.Fprintf(w, "Time:      %s", formatDuration(a.ElapsedSeconds))
	if a.AutoSubmitted {
		fmt.Fprint(w, " (timed out)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, quiz.FeedbackFor(a.PercentScore, a.Passed))
	fmt.Fprintln(w)

	for i, ans := range a.Answers {
		mark := "✓"
		if !ans.IsCorrect {
			mark = "✗"
		}
		selected := "-"
		if ans.SelectedOption != quiz.Unanswered {
			selected = strconv.Itoa(ans.SelectedOption + 1)
		}
		fmt.Fprintf(w, "%s %2d. answered %s, correct %d\n", mark, i+1, selected, ans.CorrectOption+1)
	}
}

func formatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
	historyCmd.Flags().String("topic", "", "Only show attempts on this topic")
	historyCmd.Flags().String("user", "", "Only show attempts by this user")
}
