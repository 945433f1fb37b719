package cli

import (
	"fmt"
	"strconv"

	"academy/internal/repository"
	"academy/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(balanceCmd)

	grantCmd.Flags().String("admin", "academyctl", "Actor recorded on the ledger entry")
	grantCmd.Flags().String("reference", "", "Idempotency reference; a repeated grant with the same reference is a no-op")
	grantCmd.Flags().String("memo", "", "Reason for the grant")
}

var grantCmd = &cobra.Command{
	Use:   "grant USER_ID AMOUNT",
	Short: "Credit tokens to a user's wallet",
	Args:  cobra.ExactArgs(2),
	RunE:  runGrant,
}

func runGrant(cmd *cobra.Command, args []string) error {
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("amount %q is not a whole number of tokens", args[1])
	}
	admin, _ := cmd.Flags().GetString("admin")
	ref, _ := cmd.Flags().GetString("reference")
	memo, _ := cmd.Flags().GetString("memo")

	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)
	svc := service.NewWalletService(repository.NewWalletRepository(db), repository.NewAuditLogRepository(db), nil)
	entry, created, err := svc.Grant(cmd.Context(), admin, args[0], amount, ref, memo)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "already granted (entry %d), balance unchanged\n", entry.ID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "granted %d tokens to %s, balance %d\n", amount, args[0], entry.BalanceAfter)
	return nil
}

var balanceCmd = &cobra.Command{
	Use:   "balance USER_ID",
	Short: "Print a user's token balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)
		balance, err := repository.NewWalletRepository(db).GetBalance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), balance)
		return nil
	},
}
