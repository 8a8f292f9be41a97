package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/curia-network/curia/internal/daemon"
)

// ─── serve ──────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to a TOML config file")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a curia node",
	Long: `Run a curia node: the engine, its HTTP API, and the housekeeping loop.
Without --config the node listens on 127.0.0.1:9333 with journaling and
authentication disabled.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	cfg := daemon.DefaultConfig()
	if path != "" {
		loaded, err := daemon.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
		fmt.Fprintf(os.Stdout, "Loaded config from %s\n", path)
	}

	d, err := daemon.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}
