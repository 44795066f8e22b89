package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skillgenie/skillgenie/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quizzes over HTTP and WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		provider, err := buildProvider(ctx, cmd, cfg, st.EventRepo())
		if err != nil {
			return err
		}
		sink, closeSink, err := buildSink(ctx, cfg, st)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer closeSink()

		srv := server.New(server.Options{
			Provider:     provider,
			Sink:         sink,
			Attempts:     st.AttemptRepo(),
			PassingScore: cfg.PassingScore,
			LogRequests:  true,
		})
		return srv.ListenAndServe(ctx, cfg.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SKILLGENIE_ADDR, default :8080)")
	registerProviderFlags(serveCmd)
}
