package pricing

import "math"

// BlackScholesPrice returns the closed-form European price and delta for a
// vanilla option. American contracts are rejected; there is no closed form.
// Zero volatility degenerates to the discounted forward intrinsic value.
func BlackScholesPrice(market Market, contract Contract) (Result, error) {
	if err := market.validate(); err != nil {
		return Result{}, err
	}
	if err := contract.validate(); err != nil {
		return Result{}, err
	}
	if contract.american() {
		return Result{}, invalidf("Black-Scholes prices European contracts only")
	}

	s, k := market.Spot, contract.Strike
	r, sigma, t := market.Rate, market.Volatility, market.Maturity
	discountedStrike := k * math.Exp(-r*t)

	if sigma == 0 {
		res := Result{}
		if contract.Kind == OptionCall {
			if s > discountedStrike {
				res.Price = s - discountedStrike
				res.Delta = 1
			}
		} else {
			if discountedStrike > s {
				res.Price = discountedStrike - s
				res.Delta = -1
			}
		}
		return res, nil
	}

	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)

	if contract.Kind == OptionCall {
		return Result{
			Price: s*normCDF(d1) - discountedStrike*normCDF(d2),
			Delta: normCDF(d1),
		}, nil
	}
	return Result{
		Price: discountedStrike*normCDF(-d2) - s*normCDF(-d1),
		Delta: normCDF(d1) - 1,
	}, nil
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
