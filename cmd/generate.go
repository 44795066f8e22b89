package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skillgenie/skillgenie/internal/questions"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print a quiz as a YAML question bank",
	Long: "Builds a quiz the same way play does and writes it as a YAML bank " +
		"that can be passed back with --bank.",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			out = f
		}
		return questions.WriteBank(out, q)
	},
}

func init() {
	registerProviderFlags(generateCmd)
	generateCmd.Flags().String("topic", questions.DefaultTopic, "Quiz topic")
	generateCmd.Flags().String("difficulty", string(questions.DefaultDifficulty), "Difficulty: easy, medium or hard")
	generateCmd.Flags().IntP("count", "n", questions.DefaultCount, "Number of questions")
	generateCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
}
