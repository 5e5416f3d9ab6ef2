package pricing

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Simulation holds the Monte Carlo run parameters.
type Simulation struct {
	Paths   int    // number of independent paths, >= 1
	Steps   int    // time steps per path, >= 1 (1 simulates the terminal value directly)
	Seed    *int64 // nil draws a fresh seed; a fixed seed makes the call bit-reproducible
	Workers int    // 0 or 1 runs single-threaded
}

func (s Simulation) validate() error {
	if s.Paths < 1 {
		return invalidf("path count must be >= 1, got %d", s.Paths)
	}
	if s.Steps < 1 {
		return invalidf("steps per path must be >= 1, got %d", s.Steps)
	}
	if s.Workers < 0 {
		return invalidf("worker count cannot be negative, got %d", s.Workers)
	}
	return nil
}

// Stats pools discounted payoff statistics across batches of paths. Merging
// partial Stats reproduces the single-batch result exactly: the pooled mean
// and variance come from the combined sum and sum of squares, not from
// averaging per-batch estimates.
type Stats struct {
	N          int
	Sum        float64
	SumSquares float64
}

// Merge combines two partial statistics.
func (s Stats) Merge(o Stats) Stats {
	return Stats{N: s.N + o.N, Sum: s.Sum + o.Sum, SumSquares: s.SumSquares + o.SumSquares}
}

// Result converts pooled statistics into a price and standard error. The
// standard error uses the unbiased sample variance; a single path reports 0
// since the sample variance is undefined at N=1.
func (s Stats) Result() Result {
	mean := s.Sum / float64(s.N)
	r := Result{Price: mean}
	if s.N > 1 {
		variance := (s.SumSquares - s.Sum*s.Sum/float64(s.N)) / float64(s.N-1)
		if variance < 0 {
			variance = 0 // floating-point cancellation guard
		}
		r.StandardError = math.Sqrt(variance / float64(s.N))
	}
	return r
}

// SimulatePaths runs the given number of GBM paths with the supplied generator
// and returns their pooled discounted payoff statistics. firstPath offsets the
// path index reported in PayoffError so batched callers keep global indices.
//
// Each step is an exact lognormal update S *= exp((r - sigma^2/2)*dt +
// sigma*sqrt(dt)*Z), so there is no discretization bias regardless of Steps.
func SimulatePaths(market Market, payoff Payoff, rng *rand.Rand, firstPath, paths, steps int) (Stats, error) {
	if err := market.validate(); err != nil {
		return Stats{}, err
	}
	if payoff == nil {
		return Stats{}, invalidf("payoff function is required")
	}
	if paths < 1 {
		return Stats{}, invalidf("path count must be >= 1, got %d", paths)
	}
	if steps < 1 {
		return Stats{}, invalidf("steps per path must be >= 1, got %d", steps)
	}

	dt := market.Maturity / float64(steps)
	drift := (market.Rate - 0.5*market.Volatility*market.Volatility) * dt
	diffusion := market.Volatility * math.Sqrt(dt)
	discount := math.Exp(-market.Rate * market.Maturity)

	var st Stats
	for i := 0; i < paths; i++ {
		price := market.Spot
		for s := 0; s < steps; s++ {
			price *= math.Exp(drift + diffusion*rng.NormFloat64())
		}
		v, err := payoff(price)
		if err != nil {
			return st, &PayoffError{Path: firstPath + i, Terminal: price, Err: err}
		}
		v *= discount
		st.N++
		st.Sum += v
		st.SumSquares += v * v
	}
	return st, nil
}

// MonteCarloPrice estimates an option price by simulating GBM paths and
// averaging the discounted payoff. The generator is scoped to the call: a
// fixed seed gives bit-identical results for identical parameters, and
// concurrent calls never share state.
//
// With Workers > 1 the paths are split into fixed per-worker chunks, each with
// its own generator seeded from the call seed and the worker index, and the
// partial sums are merged in worker order. Seeded runs therefore stay
// bit-reproducible at any fixed worker count, though results differ between
// different worker counts.
func MonteCarloPrice(market Market, payoff Payoff, sim Simulation) (Result, error) {
	if err := market.validate(); err != nil {
		return Result{}, err
	}
	if payoff == nil {
		return Result{}, invalidf("payoff function is required")
	}
	if err := sim.validate(); err != nil {
		return Result{}, err
	}

	var seed int64
	if sim.Seed != nil {
		seed = *sim.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	workers := sim.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > sim.Paths {
		workers = sim.Paths
	}

	if workers == 1 {
		st, err := SimulatePaths(market, payoff, rand.New(rand.NewSource(seed)), 0, sim.Paths, sim.Steps)
		if err != nil {
			return Result{}, err
		}
		return st.Result(), nil
	}

	// Deterministic chunking: worker k owns paths [k*base+min(k,rem), ...).
	base := sim.Paths / workers
	rem := sim.Paths % workers

	partials := make([]Stats, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	first := 0
	for k := 0; k < workers; k++ {
		count := base
		if k < rem {
			count++
		}
		wg.Add(1)
		go func(k, first, count int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed + int64(k)))
			partials[k], errs[k] = SimulatePaths(market, payoff, rng, first, count, sim.Steps)
		}(k, first, count)
		first += count
	}
	wg.Wait()

	var st Stats
	for k := 0; k < workers; k++ {
		if errs[k] != nil {
			return Result{}, errs[k]
		}
		st = st.Merge(partials[k])
	}
	return st.Result(), nil
}
