package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curia-network/curia/internal/domain"
)

// ─── item ───────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemSubmitCmd)
	itemCmd.AddCommand(itemCommitCmd)
	itemCmd.AddCommand(itemRevealCmd)
	itemCmd.AddCommand(itemShowCmd)

	itemSubmitCmd.Flags().String("contributor", "", "Submitting subject")
	itemSubmitCmd.Flags().String("content", "", "Opaque content reference (URL, CID, digest)")

	itemCommitCmd.Flags().String("participant", "", "Committing participant")
	itemCommitCmd.Flags().Bool("outcome", false, "Outcome to seal (used with --secret)")
	itemCommitCmd.Flags().String("secret", "", "Secret to seal; the digest is computed locally")
	itemCommitCmd.Flags().String("hash", "", "Precomputed 64-char hex digest (skips local hashing)")

	itemRevealCmd.Flags().String("participant", "", "Revealing participant")
	itemRevealCmd.Flags().Bool("outcome", false, "Outcome the commitment sealed")
	itemRevealCmd.Flags().String("secret", "", "Secret the commitment sealed")
}

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Submit and verify content items",
	Long: `Submit content items and walk them through commit-reveal verification.
Verifiers first seal a commitment (item commit), then open it (item
reveal) once enough commitments exist.`,
}

// ─── item submit ────────────────────────────────────────────────────────────

var itemSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit content for verification",
	Long:  `Submit a content reference for verification. The submission bond is escrowed from the contributor's credits.`,
	RunE:  runItemSubmit,
}

func runItemSubmit(cmd *cobra.Command, args []string) error {
	contributor, _ := cmd.Flags().GetString("contributor")
	content, _ := cmd.Flags().GetString("content")
	if contributor == "" || content == "" {
		return fmt.Errorf("--contributor and --content are required")
	}

	resp, err := apiPost("/api/items", map[string]interface{}{
		"contributor": contributor,
		"content_ref": content,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ item %s submitted (state %v)\n", num(resp["id"]), resp["state"])
	return nil
}

// ─── item commit ────────────────────────────────────────────────────────────

var itemCommitCmd = &cobra.Command{
	Use:   "commit ITEM_ID",
	Short: "Seal a commitment for the item's current round",
	Long: `Seal a commitment for the item's current round. Pass --outcome and
--secret to compute the digest locally, or --hash to send one prepared
elsewhere. Keep the secret: the reveal needs it verbatim.`,
	Args: cobra.ExactArgs(1),
	RunE: runItemCommit,
}

func runItemCommit(cmd *cobra.Command, args []string) error {
	if err := requireID(args[0], "item"); err != nil {
		return err
	}
	participant, _ := cmd.Flags().GetString("participant")
	if participant == "" {
		return fmt.Errorf("--participant is required")
	}

	hash, _ := cmd.Flags().GetString("hash")
	if hash == "" {
		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			return fmt.Errorf("either --hash or --outcome with --secret is required")
		}
		outcome, _ := cmd.Flags().GetBool("outcome")
		hash = domain.DigestHex(domain.CommitDigest(outcome, []byte(secret)))
	}

	resp, err := apiPost("/api/items/"+args[0]+"/commits", map[string]interface{}{
		"participant": participant,
		"hash":        hash,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ commitment sealed for item %s\n", num(resp["item_id"]))
	fmt.Fprintf(os.Stdout, "   hash: %v\n", resp["hash"])
	return nil
}

// ─── item reveal ────────────────────────────────────────────────────────────

var itemRevealCmd = &cobra.Command{
	Use:   "reveal ITEM_ID",
	Short: "Open a sealed commitment",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemReveal,
}

func runItemReveal(cmd *cobra.Command, args []string) error {
	if err := requireID(args[0], "item"); err != nil {
		return err
	}
	participant, _ := cmd.Flags().GetString("participant")
	secret, _ := cmd.Flags().GetString("secret")
	if participant == "" || secret == "" {
		return fmt.Errorf("--participant and --secret are required")
	}
	outcome, _ := cmd.Flags().GetBool("outcome")

	resp, err := apiPost("/api/items/"+args[0]+"/reveals", map[string]interface{}{
		"participant": participant,
		"outcome":     outcome,
		"secret":      secret,
	})
	if err != nil {
		return err
	}

	item, _ := resp["item"].(map[string]interface{})
	fmt.Fprintf(os.Stdout, "✅ reveal accepted (item %s: %s positive, %s negative)\n",
		num(item["id"]), num(item["positive_reveals"]), num(item["negative_reveals"]))
	if v, _ := resp["verified"].(bool); v {
		fmt.Fprintln(os.Stdout, "   item is now verified")
	}
	if v, _ := resp["mutation_applied"].(bool); v {
		fmt.Fprintln(os.Stdout, "   mutation applied")
	}
	if v, _ := resp["mutation_rejected"].(bool); v {
		fmt.Fprintln(os.Stdout, "   mutation rejected")
	}
	if v, _ := resp["secret_reused"].(bool); v {
		fmt.Fprintln(os.Stdout, "⚠️  secret looks reused; use a fresh secret per round")
	}
	return nil
}

// ─── item show ──────────────────────────────────────────────────────────────

var itemShowCmd = &cobra.Command{
	Use:   "show ITEM_ID",
	Short: "Show an item with its outstanding commitments",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemShow,
}

func runItemShow(cmd *cobra.Command, args []string) error {
	if err := requireID(args[0], "item"); err != nil {
		return err
	}
	resp, err := apiGet("/api/items/" + args[0])
	if err != nil {
		return err
	}
	return renderJSON(resp)
}
