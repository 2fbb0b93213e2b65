package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the SOL balance of an address",
	Long:  `Query the chain RPC for the native SOL balance of a wallet address.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pubKey, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}

		d, err := buildDeps()
		if err != nil {
			return err
		}

		lamports, err := d.chain.GetBalance(cmd.Context(), pubKey)
		if err != nil {
			return err
		}
		sol, err := d.chain.GetBalanceSOL(cmd.Context(), pubKey)
		if err != nil {
			return err
		}

		fmt.Printf("Address: %s\n", pubKey)
		fmt.Printf("Balance: %.9f SOL (%d lamports)\n", sol, lamports)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
