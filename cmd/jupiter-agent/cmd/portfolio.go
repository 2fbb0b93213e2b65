package cmd

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio [address]",
	Short: "Show user holdings",
	Long:  `Fetch the Jupiter holdings snapshot for a wallet address.`,
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

		holdings, err := d.jupiter.GetHoldings(cmd.Context(), pubKey.String())
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(holdings, '\n'))
		return err
	},
}

func init() {
	rootCmd.AddCommand(portfolioCmd)
}
