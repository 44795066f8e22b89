package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/skillgenie/skillgenie/internal/llm"
	"github.com/skillgenie/skillgenie/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM calls made to generate quizzes",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent quiz generation calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		topic, _ := cmd.Flags().GetString("topic")

		s, err := openCmdStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{
			Limit:   limit,
			Purpose: purpose,
			Topic:   topic,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}
		fmt.Fprintln(out, eventTable(events))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openCmdStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeEvent(cmd.OutOrStdout(), e)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per topic and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCmdStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		byTopic, err := repo.LLMUsageByTopic(ctx)
		if err != nil {
			return fmt.Errorf("query topic usage: %w", err)
		}
		byModel, err := repo.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Fprintln(out, "Usage by purpose")
		fmt.Fprintln(out, purposeTable(byPurpose))
		if len(byTopic) > 0 {
			fmt.Fprintln(out, "\nQuiz topics")
			fmt.Fprintln(out, topicTable(byTopic))
		}
		if len(byModel) > 0 {
			fmt.Fprintln(out, "\nEstimated cost (USD)")
			fmt.Fprintln(out, costTable(byModel))
		}
		return nil
	},
}

// openCmdStore loads config and opens the store for the llm subcommands.
func openCmdStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cmd, cfg)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		Headers(headers...)
}

func eventTable(events []store.LLMEventRecord) string {
	t := newTable("ID", "Time", "Topic", "Model", "In", "Out", "Ms", "Status")
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "failed: " + truncate(e.ErrorMessage, 30)
		}
		topic := e.Topic
		if topic == "" {
			topic = "(" + e.Purpose + ")"
		}
		t.Row(
			strconv.Itoa(e.ID),
			e.Timestamp.Local().Format(timeLayout),
			truncate(topic, 24),
			truncate(e.Model, 28),
			strconv.Itoa(e.InputTokens),
			strconv.Itoa(e.OutputTokens),
			strconv.FormatInt(e.LatencyMs, 10),
			status,
		)
	}
	return t.String()
}

func writeEvent(w io.Writer, e *store.LLMEventRecord) {
	fmt.Fprintf(w, "Call %d  %s\n", e.ID, e.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(w, "Model:   %s (%s)\n", e.Model, e.Provider)
	fmt.Fprintf(w, "Purpose: %s\n", e.Purpose)
	if e.Topic != "" {
		fmt.Fprintf(w, "Topic:   %s\n", e.Topic)
	}
	fmt.Fprintf(w, "Tokens:  %d in, %d out in %dms\n", e.InputTokens, e.OutputTokens, e.LatencyMs)
	if e.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:   %s\n", e.ErrorMessage)
	}

	section := func(title, body string) {
		fmt.Fprintf(w, "\n== %s %s\n", title, strings.Repeat("=", 56-len(title)))
		if body == "" {
			body = "(not captured)"
		}
		fmt.Fprintln(w, body)
	}
	section("Prompt", e.RequestBody)
	section("Response", e.ResponseBody)
}

func purposeTable(usage []store.PurposeUsage) string {
	t := newTable("Purpose", "Calls", "Input", "Output", "Avg ms")
	var calls, in, out int
	for _, u := range usage {
		t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	t.Row("TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), "")
	return t.String()
}

func topicTable(usage []store.TopicUsage) string {
	t := newTable("Topic", "Calls", "Failed", "Tokens")
	for _, u := range usage {
		t.Row(truncate(u.Topic, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.Failures),
			strconv.Itoa(u.InputTokens+u.OutputTokens))
	}
	return t.String()
}

// costTable prices each model with llm.LookupCost. Models without a known
// price show "?" and make the total partial.
func costTable(usage []store.ModelUsage) string {
	t := newTable("Model", "Calls", "Input", "Output", "Cost")
	var (
		total   float64
		unknown int
	)
	for _, u := range usage {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unknown++
		}
		t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), cost)
	}
	label := "TOTAL"
	if unknown > 0 {
		label = "TOTAL (partial)"
	}
	t.Row(label, "", "", "", formatCost(total))
	return t.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (e.g. "+llm.PurposeQuizGen+")")
	llmListCmd.Flags().StringP("topic", "t", "", "Only show calls generating this quiz topic")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
