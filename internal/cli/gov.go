package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

// ─── gov ────────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(govCmd)
	govCmd.AddCommand(govProposeCmd)
	govCmd.AddCommand(govVoteCmd)
	govCmd.AddCommand(govTallyCmd)
	govCmd.AddCommand(govExecuteCmd)
	govCmd.AddCommand(govListCmd)

	govProposeCmd.Flags().String("proposer", "", "Proposing account")
	govProposeCmd.Flags().String("param", "", "Governed parameter to change, e.g. quorum_weight")
	govProposeCmd.Flags().Uint64("value", 0, "New parameter value")
	govProposeCmd.Flags().Uint64("deposit", 0, "Credit deposit (at least the minimum deposit)")
	govProposeCmd.Flags().String("memo", "", "Free-form rationale")

	govVoteCmd.Flags().String("voter", "", "Voting account")
	govVoteCmd.Flags().Uint64("stake", 0, "Credits to stake; vote weight is the integer square root")
	govVoteCmd.Flags().Bool("against", false, "Vote against instead of for")

	govListCmd.Flags().String("state", "", "Filter by state: active, passed, rejected, executed")
}

var govCmd = &cobra.Command{
	Use:   "gov",
	Short: "Propose, vote on, and execute parameter changes",
	Long: `Quadratic-vote governance over the engine's parameters. Voting weight
is the integer square root of staked credits; stakes are refunded when
the proposal settles.`,
}

// ─── gov propose ────────────────────────────────────────────────────────────

var govProposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose a parameter change",
	RunE:  runGovPropose,
}

func runGovPropose(cmd *cobra.Command, args []string) error {
	proposer, _ := cmd.Flags().GetString("proposer")
	param, _ := cmd.Flags().GetString("param")
	if proposer == "" || param == "" {
		return fmt.Errorf("--proposer and --param are required")
	}
	value, _ := cmd.Flags().GetUint64("value")
	deposit, _ := cmd.Flags().GetUint64("deposit")
	memo, _ := cmd.Flags().GetString("memo")

	resp, err := apiPost("/api/proposals", map[string]interface{}{
		"proposer": proposer,
		"param":    param,
		"value":    value,
		"deposit":  deposit,
		"memo":     memo,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ proposal %s submitted (%s → %d, voting closes %v)\n",
		num(resp["id"]), param, value, resp["voting_deadline"])
	return nil
}

// ─── gov vote ───────────────────────────────────────────────────────────────

var govVoteCmd = &cobra.Command{
	Use:   "vote PROPOSAL_ID",
	Short: "Cast a quadratic-weighted vote",
	Args:  cobra.ExactArgs(1),
	RunE:  runGovVote,
}

func runGovVote(cmd *cobra.Command, args []string) error {
	if err := requireID(args[0], "proposal"); err != nil {
		return err
	}
	voter, _ := cmd.Flags().GetString("voter")
	stake, _ := cmd.Flags().GetUint64("stake")
	if voter == "" || stake == 0 {
		return fmt.Errorf("--voter and a nonzero --stake are required")
	}
	against, _ := cmd.Flags().GetBool("against")

	resp, err := apiPost("/api/proposals/"+args[0]+"/votes", map[string]interface{}{
		"voter":   voter,
		"stake":   stake,
		"support": !against,
	})
	if err != nil {
		return err
	}

	direction := "for"
	if against {
		direction = "against"
	}
	fmt.Fprintf(os.Stdout, "✅ vote recorded: weight %s %s proposal %s (stake %d escrowed)\n",
		num(resp["weight"]), direction, args[0], stake)
	return nil
}

// ─── gov tally ──────────────────────────────────────────────────────────────

var govTallyCmd = &cobra.Command{
	Use:   "tally PROPOSAL_ID",
	Short: "Close voting and settle the outcome",
	Long:  `Close voting once the deadline has passed. Rejected proposals refund stakes immediately; passed ones hold the escrow until execution.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGovTally,
}

func runGovTally(cmd *cobra.Command, args []string) error {
	if err := requireID(args[0], "proposal"); err != nil {
		return err
	}
	resp, err := apiPost("/api/proposals/"+args[0]+"/tally", nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "proposal %s: %v (yes %s / no %s)\n",
		num(resp["id"]), resp["state"], num(resp["yes_weight"]), num(resp["no_weight"]))
	return nil
}

// ─── gov execute ────────────────────────────────────────────────────────────

var govExecuteCmd = &cobra.Command{
	Use:   "execute PROPOSAL_ID",
	Short: "Apply a passed proposal and release its escrow",
	Args:  cobra.ExactArgs(1),
	RunE:  runGovExecute,
}

func runGovExecute(cmd *cobra.Command, args []string) error {
	if err := requireID(args[0], "proposal"); err != nil {
		return err
	}
	resp, err := apiPost("/api/proposals/"+args[0]+"/execute", nil)
	if err != nil {
		return err
	}

	if change, ok := resp["change"].(map[string]interface{}); ok {
		fmt.Fprintf(os.Stdout, "✅ proposal %s executed: %v = %s\n",
			num(resp["id"]), change["param"], num(change["value"]))
	} else {
		fmt.Fprintf(os.Stdout, "✅ proposal %s executed\n", num(resp["id"]))
	}
	return nil
}

// ─── gov list ───────────────────────────────────────────────────────────────

var govListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proposals",
	RunE:  runGovList,
}

func runGovList(cmd *cobra.Command, args []string) error {
	path := "/api/proposals"
	if state, _ := cmd.Flags().GetString("state"); state != "" {
		path += "?state=" + url.QueryEscape(state)
	}
	resp, err := apiGet(path)
	if err != nil {
		return err
	}

	proposals, _ := resp["proposals"].([]interface{})
	if len(proposals) == 0 {
		fmt.Fprintln(os.Stdout, "No proposals.")
		return nil
	}
	for _, raw := range proposals {
		p, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		subject := fmt.Sprintf("%v", p["kind"])
		if change, ok := p["change"].(map[string]interface{}); ok {
			subject = fmt.Sprintf("%v → %s", change["param"], num(change["value"]))
		} else if id, ok := p["item_id"]; ok {
			subject = fmt.Sprintf("dispute over item %s", num(id))
		}
		fmt.Fprintf(os.Stdout, "• #%s [%v] %s (yes %s / no %s)\n",
			num(p["id"]), p["state"], subject, num(p["yes_weight"]), num(p["no_weight"]))
	}
	return nil
}
