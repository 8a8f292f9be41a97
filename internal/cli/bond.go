package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ─── bond ───────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(bondCmd)
	bondCmd.AddCommand(bondAddCmd)
	bondCmd.AddCommand(bondUnbondCmd)
	bondCmd.AddCommand(bondClaimCmd)

	for _, c := range []*cobra.Command{bondAddCmd, bondUnbondCmd, bondClaimCmd} {
		c.Flags().String("subject", "", "Bonding subject")
		c.Flags().String("target", "", "Target community")
	}
	bondAddCmd.Flags().Uint64("amount", 0, "Score to bond")
	bondUnbondCmd.Flags().Uint64("amount", 0, "Bonded score to unlock")
}

var bondCmd = &cobra.Command{
	Use:   "bond",
	Short: "Bond score toward communities",
	Long: `Earmark free score toward a community, start the timed unlock, and
claim it back once the lock expires. At most one unbond request per
subject and target may be pending.`,
}

func bondArgs(cmd *cobra.Command) (subject, target string, err error) {
	subject, _ = cmd.Flags().GetString("subject")
	target, _ = cmd.Flags().GetString("target")
	if subject == "" || target == "" {
		return "", "", fmt.Errorf("--subject and --target are required")
	}
	return subject, target, nil
}

// ─── bond add ───────────────────────────────────────────────────────────────

var bondAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Bond free score to a community",
	RunE:  runBondAdd,
}

func runBondAdd(cmd *cobra.Command, args []string) error {
	subject, target, err := bondArgs(cmd)
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	if amount == 0 {
		return fmt.Errorf("a nonzero --amount is required")
	}

	resp, err := apiPost("/api/bonds", map[string]interface{}{
		"subject": subject,
		"target":  target,
		"amount":  amount,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ %s bonded %d to %s (total there now %s)\n",
		subject, amount, target, num(resp["bonded"]))
	return nil
}

// ─── bond unbond ────────────────────────────────────────────────────────────

var bondUnbondCmd = &cobra.Command{
	Use:   "unbond",
	Short: "Start the timed unlock for bonded score",
	RunE:  runBondUnbond,
}

func runBondUnbond(cmd *cobra.Command, args []string) error {
	subject, target, err := bondArgs(cmd)
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	if amount == 0 {
		return fmt.Errorf("a nonzero --amount is required")
	}

	resp, err := apiPost("/api/bonds/unbond", map[string]interface{}{
		"subject": subject,
		"target":  target,
		"amount":  amount,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ %s locked until %v (claim it then with 'curia bond claim')\n",
		num(resp["amount"]), resp["unlock_time"])
	return nil
}

// ─── bond claim ─────────────────────────────────────────────────────────────

var bondClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim an expired unbond request back to free score",
	RunE:  runBondClaim,
}

func runBondClaim(cmd *cobra.Command, args []string) error {
	subject, target, err := bondArgs(cmd)
	if err != nil {
		return err
	}

	resp, err := apiPost("/api/bonds/claim", map[string]interface{}{
		"subject": subject,
		"target":  target,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ %s released back to %s's free score\n", num(resp["amount"]), subject)
	return nil
}
