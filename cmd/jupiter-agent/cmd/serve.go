package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bh2smith/jupiter-agent/internal/common"
	"github.com/bh2smith/jupiter-agent/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the agent's HTTP API.

Routes:
  GET /api/quote          resolve tokens, quote, and build an unsigned swap
  GET /api/portfolio      user holdings snapshot
  GET /api/tokens/search  ranked token search
  GET /healthz            liveness check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}
		logger := common.NewLogger(d.cfg.Log.Level, d.cfg.Log.Format)

		srv := server.New(d.cfg.Server, d.orchestrator, d.jupiter,
			server.WithMetrics(d.metrics),
			server.WithMinScore(d.cfg.Jupiter.MinTokenScore),
		)
		srv.SetLogger(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		defer func() {
			_ = d.metrics.Flush(context.Background())
		}()
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "port to listen on")
	if err := viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		cobra.CheckErr(err)
	}
	rootCmd.AddCommand(serveCmd)
}
