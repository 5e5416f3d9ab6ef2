package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestBlackScholesPrice_ReferenceCase(t *testing.T) {
	// Classic parameters: S=100, K=100, r=0.05, sigma=0.2, T=1.
	market := Market{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}

	call, err := BlackScholesPrice(market, Contract{Strike: 100, Kind: OptionCall})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	put, err := BlackScholesPrice(market, Contract{Strike: 100, Kind: OptionPut})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if !almostEqual(call.Price, 10.450583572185565, 1e-9) {
		t.Errorf("call price mismatch: got %v", call.Price)
	}
	if !almostEqual(put.Price, 5.573526022256971, 1e-9) {
		t.Errorf("put price mismatch: got %v", put.Price)
	}
	if !almostEqual(call.Delta, 0.6368306511756191, 1e-9) {
		t.Errorf("call delta mismatch: got %v", call.Delta)
	}
	if !almostEqual(put.Delta, -0.3631693488243809, 1e-9) {
		t.Errorf("put delta mismatch: got %v", put.Delta)
	}
}

func TestBlackScholesPrice_PutCallParity(t *testing.T) {
	// C - P = S - K*exp(-rT)
	market := Market{Spot: 105, Rate: 0.03, Volatility: 0.25, Maturity: 0.5}

	call, err := BlackScholesPrice(market, Contract{Strike: 100, Kind: OptionCall})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	put, err := BlackScholesPrice(market, Contract{Strike: 100, Kind: OptionPut})
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	left := call.Price - put.Price
	right := market.Spot - 100*math.Exp(-market.Rate*market.Maturity)
	if !almostEqual(left, right, 1e-9) {
		t.Errorf("parity mismatch: left %v right %v", left, right)
	}
}

func TestBlackScholesPrice_ZeroVolatility(t *testing.T) {
	market := Market{Spot: 100, Rate: 0.05, Volatility: 0, Maturity: 1}

	call, err := BlackScholesPrice(market, Contract{Strike: 100, Kind: OptionCall})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	want := math.Max(100-100*math.Exp(-0.05), 0)
	if !almostEqual(call.Price, want, 1e-12) {
		t.Errorf("zero-vol call mismatch: got %v want %v", call.Price, want)
	}
	if call.Delta != 1 {
		t.Errorf("expected delta 1 for in-the-forward call, got %v", call.Delta)
	}
}

func TestBlackScholesPrice_RejectsAmerican(t *testing.T) {
	market := Market{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}
	_, err := BlackScholesPrice(market, Contract{Strike: 100, Kind: OptionPut, Style: ExerciseAmerican})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestBlackScholesPrice_InvalidInputs(t *testing.T) {
	tests := []struct {
		name     string
		market   Market
		contract Contract
	}{
		{"zero spot", Market{Spot: 0, Rate: 0.05, Volatility: 0.2, Maturity: 1}, Contract{Strike: 100, Kind: OptionCall}},
		{"zero maturity", Market{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 0}, Contract{Strike: 100, Kind: OptionCall}},
		{"zero strike", Market{Spot: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}, Contract{Strike: 0, Kind: OptionCall}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BlackScholesPrice(tt.market, tt.contract)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
