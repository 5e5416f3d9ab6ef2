package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/option-pricer/internal/pricing"
)

func binomialCmd() *cobra.Command {
	var (
		market   marketFlags
		strike   float64
		steps    int
		kind     string
		american bool
	)

	cmd := &cobra.Command{
		Use:   "binomial",
		Short: "Price a vanilla option on a CRR binomial lattice",
		Long: `Price a European or American vanilla option on a Cox-Ross-Rubinstein
binomial lattice.

Examples:
  # European call, 500 steps
  pricer binomial --spot 100 --strike 100 --maturity 1 --rate 0.05 --volatility 0.2 --steps 500

  # American put priced to an expiry date
  pricer binomial --spot 100 --strike 110 --expiry 2027-01-15 --rate 0.05 --volatility 0.2 --steps 500 --kind put --american`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mkt, err := market.market()
			if err != nil {
				return err
			}

			if steps > cfg.Limits.MaxLatticeSteps {
				return fmt.Errorf("steps exceeds configured maximum of %d", cfg.Limits.MaxLatticeSteps)
			}

			lattice, err := pricing.CRRLattice(mkt.Volatility, mkt.Maturity, steps)
			if err != nil {
				return err
			}

			style := pricing.ExerciseEuropean
			if american {
				style = pricing.ExerciseAmerican
			}
			contract := pricing.Contract{
				Strike: strike,
				Kind:   parseKind(kind),
				Style:  style,
			}

			res, err := pricing.BinomialPrice(mkt, contract, lattice)
			if err != nil {
				return err
			}

			logger.Debug("binomial priced",
				zap.Int("steps", steps),
				zap.Float64("price", res.Price),
			)

			fmt.Printf("price: %.6f\n", res.Price)
			fmt.Printf("delta: %.6f\n", res.Delta)
			return nil
		},
	}

	market.register(cmd)
	cmd.Flags().Float64VarP(&strike, "strike", "k", 0, "strike price (required)")
	cmd.Flags().IntVarP(&steps, "steps", "n", 500, "number of lattice steps")
	cmd.Flags().StringVar(&kind, "kind", "call", "option kind: call or put")
	cmd.Flags().BoolVar(&american, "american", false, "allow early exercise")
	_ = cmd.MarkFlagRequired("strike")

	return cmd
}
