package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/option-pricer/internal/pricing"
)

func blackscholesCmd() *cobra.Command {
	var (
		market marketFlags
		strike float64
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "blackscholes",
		Short: "Price a European vanilla option in closed form",
		Long: `Price a European call or put with the Black-Scholes formula. Useful as
a reference value for the binomial and Monte Carlo engines.

Example:
  pricer blackscholes --spot 100 --strike 100 --maturity 1 --rate 0.05 --volatility 0.2 --kind put`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mkt, err := market.market()
			if err != nil {
				return err
			}

			contract := pricing.Contract{
				Strike: strike,
				Kind:   parseKind(kind),
			}

			res, err := pricing.BlackScholesPrice(mkt, contract)
			if err != nil {
				return err
			}

			fmt.Printf("price: %.6f\n", res.Price)
			fmt.Printf("delta: %.6f\n", res.Delta)
			return nil
		},
	}

	market.register(cmd)
	cmd.Flags().Float64VarP(&strike, "strike", "k", 0, "strike price (required)")
	cmd.Flags().StringVar(&kind, "kind", "call", "option kind: call or put")
	_ = cmd.MarkFlagRequired("strike")

	return cmd
}
