package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bh2smith/jupiter-agent/internal/agent"
)

var (
	quoteSolAddress string
	quoteSellToken  string
	quoteBuyToken   string
	quoteAmount     float64
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote a swap and build the unsigned transaction",
	Long: `Resolve both token references, fetch a quote from Jupiter, and build
the unsigned swap transaction. Prints the result as JSON.

If a token reference is ambiguous the candidate set is printed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}

		outcome, err := d.orchestrator.Run(cmd.Context(), agent.QuoteQuery{
			SolAddress: quoteSolAddress,
			InputMint:  quoteSellToken,
			OutputMint: quoteBuyToken,
			Amount:     quoteAmount,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if outcome.Candidates != nil {
			fmt.Fprintln(os.Stderr, "Token reference is ambiguous; pick one of:")
			return enc.Encode(outcome.Candidates)
		}
		return enc.Encode(outcome.Executable)
	},
}

func init() {
	quoteCmd.Flags().StringVar(&quoteSolAddress, "address", "", "user wallet address (required)")
	quoteCmd.Flags().StringVar(&quoteSellToken, "sell", "", "token to sell, symbol or mint address (required)")
	quoteCmd.Flags().StringVar(&quoteBuyToken, "buy", "", "token to buy, symbol or mint address (required)")
	quoteCmd.Flags().Float64Var(&quoteAmount, "amount", 0, "amount to sell in human units (required)")
	cobra.CheckErr(quoteCmd.MarkFlagRequired("address"))
	cobra.CheckErr(quoteCmd.MarkFlagRequired("sell"))
	cobra.CheckErr(quoteCmd.MarkFlagRequired("buy"))
	cobra.CheckErr(quoteCmd.MarkFlagRequired("amount"))
	rootCmd.AddCommand(quoteCmd)
}
