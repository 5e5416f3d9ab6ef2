package pricing

import "math"

// Lattice holds the per-step movement factors of a recombining binomial tree.
type Lattice struct {
	Steps int
	Up    float64
	Down  float64
}

// CRRLattice builds the Cox-Ross-Rubinstein parameterization
// u = exp(sigma*sqrt(dt)), d = 1/u for the given volatility and maturity.
// Zero volatility is rejected: u = d = 1 gives a lattice with no branching.
func CRRLattice(volatility, maturity float64, steps int) (Lattice, error) {
	if steps < 1 {
		return Lattice{}, invalidf("lattice steps must be >= 1, got %d", steps)
	}
	if maturity <= 0 {
		return Lattice{}, invalidf("maturity must be positive, got %g", maturity)
	}
	if volatility <= 0 {
		return Lattice{}, invalidf("volatility must be positive for a CRR lattice, got %g", volatility)
	}
	dt := maturity / float64(steps)
	u := math.Exp(volatility * math.Sqrt(dt))
	return Lattice{Steps: steps, Up: u, Down: 1 / u}, nil
}

// riskNeutral validates the lattice against the market and returns the
// risk-neutral up-probability and the step length.
func (l Lattice) riskNeutral(rate, maturity float64) (p, dt float64, err error) {
	if l.Steps < 1 {
		return 0, 0, invalidf("lattice steps must be >= 1, got %d", l.Steps)
	}
	if l.Down <= 0 {
		return 0, 0, invalidf("down factor must be positive, got %g", l.Down)
	}
	if l.Up <= l.Down {
		return 0, 0, invalidf("up factor must exceed down factor, got u=%g d=%g", l.Up, l.Down)
	}
	dt = maturity / float64(l.Steps)
	growth := math.Exp(rate * dt)
	p = (growth - l.Down) / (l.Up - l.Down)
	// No-arbitrage requires d < exp(r*dt) < u, i.e. p strictly inside (0,1).
	if p <= 0 || p >= 1 {
		return 0, 0, invalidf("risk-neutral probability %g outside (0,1); need d < exp(r*dt) < u", p)
	}
	return p, dt, nil
}

// BinomialPrice prices an option on a recombining binomial lattice by backward
// induction. American contracts take the better of continuation and immediate
// exercise at every node. Delta is estimated from the two first-step node
// values; for a one-step lattice that layer is the terminal layer itself.
//
// Only two induction layers are held at a time, so the call runs in O(Steps)
// space.
func BinomialPrice(market Market, contract Contract, lattice Lattice) (Result, error) {
	if err := market.validate(); err != nil {
		return Result{}, err
	}
	if err := contract.validate(); err != nil {
		return Result{}, err
	}
	p, dt, err := lattice.riskNeutral(market.Rate, market.Maturity)
	if err != nil {
		return Result{}, err
	}

	n := lattice.Steps
	u, d := lattice.Up, lattice.Down
	discount := math.Exp(-market.Rate * dt)

	// Terminal payoffs at the N+1 leaves.
	values := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		leaf := market.Spot * math.Pow(u, float64(i)) * math.Pow(d, float64(n-i))
		values[i] = contract.intrinsic(leaf)
	}

	var vDown, vUp float64
	if n == 1 {
		vDown, vUp = values[0], values[1]
	}

	american := contract.american()
	for step := n - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			continuation := discount * (p*values[i+1] + (1-p)*values[i])
			if american {
				node := market.Spot * math.Pow(u, float64(i)) * math.Pow(d, float64(step-i))
				if exercise := contract.intrinsic(node); exercise > continuation {
					continuation = exercise
				}
			}
			values[i] = continuation
		}
		if step == 1 {
			vDown, vUp = values[0], values[1]
		}
	}

	delta := (vUp - vDown) / (market.Spot * (u - d))
	return Result{Price: values[0], Delta: delta}, nil
}
