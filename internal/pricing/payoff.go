package pricing

// Payoff maps a simulated terminal asset price to a cash payoff.
// Implementations must be pure and safe for concurrent evaluation: the Monte
// Carlo engine evaluates them once per path, possibly from several workers.
// Only terminal-value payoffs are supported; path-dependent payoffs are out
// of scope.
type Payoff func(terminal float64) (float64, error)

// CallPayoff returns the vanilla call payoff max(S - K, 0).
func CallPayoff(strike float64) Payoff {
	return func(terminal float64) (float64, error) {
		if v := terminal - strike; v > 0 {
			return v, nil
		}
		return 0, nil
	}
}

// PutPayoff returns the vanilla put payoff max(K - S, 0).
func PutPayoff(strike float64) Payoff {
	return func(terminal float64) (float64, error) {
		if v := strike - terminal; v > 0 {
			return v, nil
		}
		return 0, nil
	}
}

// VanillaPayoff builds the payoff for a call or put with the given strike.
func VanillaPayoff(kind OptionKind, strike float64) (Payoff, error) {
	if strike <= 0 {
		return nil, invalidf("strike price must be positive, got %g", strike)
	}
	switch kind {
	case OptionCall:
		return CallPayoff(strike), nil
	case OptionPut:
		return PutPayoff(strike), nil
	default:
		return nil, invalidf("option kind must be %q or %q, got %q", OptionCall, OptionPut, kind)
	}
}
