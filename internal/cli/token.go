package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/curia-network/curia/internal/api"
)

// ─── token ──────────────────────────────────────────────────────────────────

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "", "Account the token identifies")
	tokenCmd.Flags().String("role", "", "Granted role: recorder or operator (empty = participant)")
	tokenCmd.Flags().String("secret", "", "Signing secret; must match the daemon's [api] auth_secret")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a guarded daemon",
	Long: `Mint an HS256 bearer token for a daemon running with auth enabled.
The signing secret must match the daemon's [api] auth_secret. Pass the
token to client commands via --token or $CURIA_TOKEN.`,
	RunE: runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	role, _ := cmd.Flags().GetString("role")
	secret, _ := cmd.Flags().GetString("secret")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	if subject == "" || secret == "" {
		return fmt.Errorf("--subject and --secret are required")
	}
	switch role {
	case "", api.RoleRecorder, api.RoleOperator:
	default:
		return fmt.Errorf("unknown role %q (want recorder or operator)", role)
	}

	token, err := api.SignToken([]byte(secret), subject, role, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, token)
	return nil
}
