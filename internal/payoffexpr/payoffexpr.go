// Package payoffexpr compiles user-supplied payoff expressions into payoff
// functions for the Monte Carlo engine.
//
// Expressions run in a sandboxed expression VM with a closed namespace: the
// terminal price as S/spot, the strike as K/strike, the helpers exp, log and
// sqrt, and the builtin max, min and abs. Arithmetic, comparisons and the
// ternary operator work as usual; anything else fails at compile time, so a
// payoff string can never execute arbitrary code.
package payoffexpr

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dgnsrekt/option-pricer/internal/pricing"
)

// scope is the complete namespace visible to payoff expressions.
type scope struct {
	S      float64               `expr:"S"`
	Spot   float64               `expr:"spot"`
	K      float64               `expr:"K"`
	Strike float64               `expr:"strike"`
	Exp    func(float64) float64 `expr:"exp"`
	Log    func(float64) float64 `expr:"log"`
	Sqrt   func(float64) float64 `expr:"sqrt"`
}

func newScope(strike float64) scope {
	return scope{
		K:      strike,
		Strike: strike,
		Exp:    math.Exp,
		Log:    math.Log,
		Sqrt:   math.Sqrt,
	}
}

// Compile turns a payoff expression into a pricing.Payoff bound to the given
// strike. Example: "max(S - K, 0)". Compilation happens once; evaluation
// failures surface per path through the engine's PayoffError.
func Compile(expression string, strike float64) (pricing.Payoff, error) {
	src := strings.TrimSpace(expression)
	if src == "" {
		return nil, fmt.Errorf("payoff expression cannot be empty")
	}

	program, err := expr.Compile(src, expr.Env(scope{}), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("compiling payoff expression: %w", err)
	}

	return func(terminal float64) (float64, error) {
		// Fresh scope per evaluation keeps the compiled payoff safe for
		// concurrent simulation workers.
		env := newScope(strike)
		env.S = terminal
		env.Spot = terminal

		out, err := vm.Run(program, env)
		if err != nil {
			return 0, err
		}
		v, ok := out.(float64)
		if !ok {
			return 0, fmt.Errorf("payoff expression returned %T, want a number", out)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("payoff expression produced a non-finite value")
		}
		return v, nil
	}, nil
}
