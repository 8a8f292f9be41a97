// Package cli implements the curia command line: a daemon launcher plus
// client commands that drive a running node over its HTTP API.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ─── Root command ───────────────────────────────────────────────────────────

var (
	apiAddr  string
	apiToken string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "addr", "http://127.0.0.1:9333", "Base URL of the daemon API")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token for guarded endpoints (falls back to $CURIA_TOKEN)")
	rootCmd.AddCommand(statusCmd)
}

var rootCmd = &cobra.Command{
	Use:   "curia",
	Short: "Reputation and curation engine",
	Long: `Curia is an off-chain reputation and curation engine: decaying score
ledgers, commit-reveal content verification, score bonding toward
communities, and quadratic-vote governance over the engine's own
parameters.

Start a node with 'curia serve', then drive it with the client commands.`,
	SilenceUsage: true,
}

// Execute runs the root command. Cobra prints the failing command's
// error; the caller only needs the exit status.
func Execute() error {
	return rootCmd.Execute()
}

// ─── status ─────────────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show node status",
	Long:  `Show the node's epoch, aggregate counts, and live governed parameters.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/api/status")
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Status:      %v\n", resp["status"])
	fmt.Fprintf(os.Stdout, "Epoch:       %s (genesis %v)\n", num(resp["epoch"]), resp["genesis"])

	if counts, ok := resp["counts"].(map[string]interface{}); ok {
		fmt.Fprintf(os.Stdout, "Subjects:    %s\n", num(counts["subjects"]))
		fmt.Fprintf(os.Stdout, "Items:       %s\n", stateCounts(counts["items"], itemStateOrder))
		fmt.Fprintf(os.Stdout, "Proposals:   %s\n", stateCounts(counts["proposals"], proposalStateOrder))
		fmt.Fprintf(os.Stdout, "Communities: %s active\n", num(counts["active_communities"]))
		fmt.Fprintf(os.Stdout, "Assets:      %s\n", num(counts["assets"]))
	}

	if params, ok := resp["params"].(map[string]interface{}); ok {
		fmt.Fprintln(os.Stdout, "Parameters:")
		for _, name := range paramOrder {
			if v, ok := params[name]; ok {
				fmt.Fprintf(os.Stdout, "  %-24s %s\n", name, num(v))
			}
		}
	}
	return nil
}

var (
	itemStateOrder     = []string{"pending", "verified", "disputed", "resolved"}
	proposalStateOrder = []string{"active", "passed", "rejected", "executed"}
	paramOrder         = []string{
		"decay_rate_per_second",
		"voting_period_seconds",
		"quorum_weight",
		"minimum_deposit",
		"required_reveal_quorum",
		"unbond_lock_seconds",
	}
)

// stateCounts renders a per-state count map in a fixed order.
func stateCounts(v interface{}, order []string) string {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		return "none"
	}
	var parts []string
	for _, name := range order {
		if n, ok := m[name]; ok {
			parts = append(parts, fmt.Sprintf("%s %s", name, num(n)))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
