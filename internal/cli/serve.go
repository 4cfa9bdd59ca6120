package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cleanmap/cleanmap/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cleanmap HTTP server",
	Long: `Start the HTTP server. Configuration comes from the environment:

  PORT                    listen port (default 3000)
  CLEANMAP_HOST           bind address (default 0.0.0.0)
  CLEANMAP_DATA_DIR       directory for markers.json and points.json
  JWT_SECRET              HS256 secret for bearer tokens (required)
  ADMIN_UIDS              comma-separated moderator subject ids
  CLEANMAP_AWARD_TABLE    optional TOML award table path
  CLEANMAP_METRICS        expose /metrics (default true)`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return daemon.Run(ctx, cfg)
}
