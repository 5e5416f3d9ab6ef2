package main

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/option-pricer/internal/maturity"
	"github.com/dgnsrekt/option-pricer/internal/pricing"
)

// marketFlags holds the market-side inputs shared by every pricing command.
// Maturity can be given directly in years or derived from an expiry date
// counted in NYSE trading days.
type marketFlags struct {
	spot       float64
	rate       float64
	volatility float64
	years      float64
	expiry     string
}

func (f *marketFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.spot, "spot", "s", 0, "spot price of the underlying (required)")
	cmd.Flags().Float64VarP(&f.rate, "rate", "r", 0, "annual risk-free rate, e.g. 0.05")
	cmd.Flags().Float64Var(&f.volatility, "volatility", 0, "annual volatility, e.g. 0.2 (required)")
	cmd.Flags().Float64VarP(&f.years, "maturity", "t", 0, "time to maturity in years")
	cmd.Flags().StringVar(&f.expiry, "expiry", "", "expiry date YYYY-MM-DD, converted via the NYSE trading calendar")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("volatility")
}

func (f *marketFlags) market() (pricing.Market, error) {
	years := f.years
	if f.expiry != "" {
		if f.years != 0 {
			return pricing.Market{}, errors.New("give either --maturity or --expiry, not both")
		}
		expiry, err := maturity.ParseExpiry(f.expiry)
		if err != nil {
			return pricing.Market{}, err
		}
		years, err = maturity.YearFraction(time.Now(), expiry)
		if err != nil {
			return pricing.Market{}, err
		}
	}
	return pricing.Market{
		Spot:       f.spot,
		Rate:       f.rate,
		Volatility: f.volatility,
		Maturity:   years,
	}, nil
}

func parseKind(kind string) pricing.OptionKind {
	return pricing.OptionKind(strings.ToLower(strings.TrimSpace(kind)))
}
