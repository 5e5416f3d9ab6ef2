package pricing

// OptionKind selects the vanilla payoff direction.
type OptionKind string

const (
	OptionCall OptionKind = "call"
	OptionPut  OptionKind = "put"
)

// ExerciseStyle controls early-exercise handling in the binomial engine.
// An empty style is treated as European.
type ExerciseStyle string

const (
	ExerciseEuropean ExerciseStyle = "european"
	ExerciseAmerican ExerciseStyle = "american"
)

// Market bundles the market-side inputs shared by all engines.
type Market struct {
	Spot       float64 // current underlying price, > 0
	Rate       float64 // continuously compounded risk-free rate
	Volatility float64 // annualized, >= 0
	Maturity   float64 // time to maturity in years, > 0
}

func (m Market) validate() error {
	if m.Spot <= 0 {
		return invalidf("spot price must be positive, got %g", m.Spot)
	}
	if m.Maturity <= 0 {
		return invalidf("maturity must be positive, got %g", m.Maturity)
	}
	if m.Volatility < 0 {
		return invalidf("volatility cannot be negative, got %g", m.Volatility)
	}
	return nil
}

// Contract describes a vanilla option contract.
type Contract struct {
	Strike float64
	Kind   OptionKind
	Style  ExerciseStyle
}

func (c Contract) validate() error {
	if c.Strike <= 0 {
		return invalidf("strike price must be positive, got %g", c.Strike)
	}
	switch c.Kind {
	case OptionCall, OptionPut:
	default:
		return invalidf("option kind must be %q or %q, got %q", OptionCall, OptionPut, c.Kind)
	}
	switch c.Style {
	case ExerciseEuropean, ExerciseAmerican, "":
	default:
		return invalidf("exercise style must be %q or %q, got %q", ExerciseEuropean, ExerciseAmerican, c.Style)
	}
	return nil
}

func (c Contract) american() bool { return c.Style == ExerciseAmerican }

// intrinsic returns the immediate-exercise payoff for the contract kind.
func (c Contract) intrinsic(spot float64) float64 {
	if c.Kind == OptionPut {
		if v := c.Strike - spot; v > 0 {
			return v
		}
		return 0
	}
	if v := spot - c.Strike; v > 0 {
		return v
	}
	return 0
}

// Result is the outcome of a single pricing call.
type Result struct {
	Price         float64
	Delta         float64 // binomial and Black-Scholes engines
	StandardError float64 // Monte Carlo engine; 0 for a single path
}
