package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// ─── badge ──────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(badgeCmd)
	badgeCmd.AddCommand(badgeListCmd)
	badgeCmd.AddCommand(badgeClaimCmd)

	badgeClaimCmd.Flags().String("subject", "", "Claiming subject")
}

var badgeCmd = &cobra.Command{
	Use:   "badge",
	Short: "Browse and claim badges",
}

// ─── badge list ─────────────────────────────────────────────────────────────

var badgeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the badge catalog",
	RunE:  runBadgeList,
}

func runBadgeList(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/api/badges")
	if err != nil {
		return err
	}

	badges, _ := resp["badges"].([]interface{})
	if len(badges) == 0 {
		fmt.Fprintln(os.Stdout, "No badges in the catalog.")
		return nil
	}
	for _, raw := range badges {
		rule, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		line := fmt.Sprintf("• %v — %v", rule["id"], rule["name"])
		if v, ok := rule["min_total_score"]; ok && num(v) != "0" {
			line += fmt.Sprintf(" (score ≥ %s", num(v))
			if b, ok := rule["min_bonded_amount"]; ok && num(b) != "0" {
				line += fmt.Sprintf(", bonded ≥ %s", num(b))
			}
			line += ")"
		}
		fmt.Fprintln(os.Stdout, line)
	}
	return nil
}

// ─── badge claim ────────────────────────────────────────────────────────────

var badgeClaimCmd = &cobra.Command{
	Use:   "claim BADGE_ID",
	Short: "Claim a badge for an eligible subject",
	Args:  cobra.ExactArgs(1),
	RunE:  runBadgeClaim,
}

func runBadgeClaim(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	if subject == "" {
		return fmt.Errorf("--subject is required")
	}

	resp, err := apiPost("/api/badges/"+url.PathEscape(args[0])+"/claims", map[string]interface{}{
		"subject": subject,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ badge %v claimed by %v\n", resp["badge_id"], resp["subject"])
	return nil
}
