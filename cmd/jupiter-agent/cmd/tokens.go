package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bh2smith/jupiter-agent/internal/tokens"
)

var searchMinScore float64

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Token search and resolution commands",
	Long:  `Commands for searching the Jupiter token index and resolving references.`,
}

var tokensSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the token index",
	Long:  `Search Jupiter's token index and print matches passing the score filter.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}

		minScore := searchMinScore
		if !cmd.Flags().Changed("min-score") {
			minScore = d.cfg.Jupiter.MinTokenScore
		}
		mints, err := d.jupiter.SearchToken(cmd.Context(), args[0], minScore)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(mints)
	},
}

var tokensResolveCmd = &cobra.Command{
	Use:   "resolve [symbol-or-address]",
	Short: "Resolve a token reference",
	Long:  `Resolve a symbol or mint address to a canonical mint and decimals.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps()
		if err != nil {
			return err
		}

		result, err := d.resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		switch result.Kind {
		case tokens.KindResolved:
			return enc.Encode(map[string]any{
				"address":  result.Token.Address.String(),
				"decimals": result.Token.Decimals,
			})
		case tokens.KindCandidates:
			fmt.Fprintln(os.Stderr, "Reference is ambiguous; candidates:")
			return enc.Encode(result.Candidates)
		default:
			return fmt.Errorf("token not found: %s", args[0])
		}
	},
}

func init() {
	tokensSearchCmd.Flags().Float64Var(&searchMinScore, "min-score", 95, "minimum organic score")
	tokensCmd.AddCommand(tokensSearchCmd)
	tokensCmd.AddCommand(tokensResolveCmd)
	rootCmd.AddCommand(tokensCmd)
}
