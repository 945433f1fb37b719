package cli

import (
	"fmt"

	"academy/internal/auth"
	"academy/internal/domain"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("role", domain.RoleStudent, "Role claim (STUDENT or ADMIN)")
	tokenCmd.Flags().String("email", "", "Email claim")
}

var tokenCmd = &cobra.Command{
	Use:   "token USER_ID",
	Short: "Issue an access token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		email, _ := cmd.Flags().GetString("email")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tok, err := auth.GenerateAccessToken(&cfg.JWT, args[0], email, role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}
