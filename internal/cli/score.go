package cli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// ─── score ──────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreGetCmd)
	scoreCmd.AddCommand(scoreAdjustCmd)

	scoreAdjustCmd.Flags().String("cause", "", "Recorded cause tag, e.g. VERIFIED_INTERACTION")
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Inspect and adjust subject scores",
}

// ─── score get ──────────────────────────────────────────────────────────────

var scoreGetCmd = &cobra.Command{
	Use:   "get SUBJECT",
	Short: "Show a subject's decayed score and collateral split",
	Args:  cobra.ExactArgs(1),
	RunE:  runScoreGet,
}

func runScoreGet(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/api/subjects/" + url.PathEscape(args[0]))
	if err != nil {
		return err
	}

	sub, _ := resp["subject"].(map[string]interface{})
	fmt.Fprintf(os.Stdout, "Subject: %v\n", sub["id"])
	fmt.Fprintf(os.Stdout, "Score:   %s\n", num(sub["score"]))
	fmt.Fprintf(os.Stdout, "Free:    %s\n", num(resp["free"]))
	fmt.Fprintf(os.Stdout, "Bonded:  %s\n", num(resp["bonded"]))
	fmt.Fprintf(os.Stdout, "Locked:  %s\n", num(resp["locked"]))

	if badges, ok := resp["badges"].([]interface{}); ok && len(badges) > 0 {
		fmt.Fprintln(os.Stdout, "Badges:")
		for _, b := range badges {
			if claim, ok := b.(map[string]interface{}); ok {
				fmt.Fprintf(os.Stdout, "  • %v\n", claim["badge_id"])
			}
		}
	}
	return nil
}

// ─── score adjust ───────────────────────────────────────────────────────────

var scoreAdjustCmd = &cobra.Command{
	Use:   "adjust SUBJECT DELTA",
	Short: "Apply a score adjustment (recorder token required)",
	Long: `Apply a signed score adjustment to a subject. DELTA may be negative;
scores floor at zero. Every adjustment needs a --cause tag for the
subject's history.`,
	Args: cobra.ExactArgs(2),
	RunE: runScoreAdjust,
}

func runScoreAdjust(cmd *cobra.Command, args []string) error {
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("delta must be an integer, got %q", args[1])
	}
	cause, _ := cmd.Flags().GetString("cause")
	if cause == "" {
		return fmt.Errorf("--cause is required, e.g. --cause VERIFIED_INTERACTION")
	}

	resp, err := apiPost("/api/subjects/"+url.PathEscape(args[0])+"/adjust", map[string]interface{}{
		"delta": delta,
		"cause": cause,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ %s adjusted by %+d (score now %s)\n", args[0], delta, num(resp["score"]))
	return nil
}
