package pool

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestSimulateBuy_WorkedExample(t *testing.T) {
	// Reserves T=1000, B=100 (price 0.10, k=100000). Buying 10 cash:
	// newB=110, newT=100000/110≈909.0909, tokensOut≈90.9091.
	tokensOut, newPrice := SimulateBuy(1000, 100, 10)

	if !almostEqual(tokensOut, 1000-100000.0/110, 1e-6) {
		t.Errorf("expected tokensOut ~90.9091, got %f", tokensOut)
	}
	if !almostEqual(newPrice, 110/(100000.0/110), 1e-6) {
		t.Errorf("expected pre-fee price ~0.1210, got %f", newPrice)
	}
}

func TestSimulateBuy_EmptyPool(t *testing.T) {
	tokensOut, newPrice := SimulateBuy(0, 100, 10)
	if tokensOut != 0 || newPrice != 0 {
		t.Errorf("expected zero output on empty token reserve, got (%f, %f)", tokensOut, newPrice)
	}

	tokensOut, newPrice = SimulateBuy(1000, 0, 10)
	if tokensOut != 0 || newPrice != 0 {
		t.Errorf("expected zero output on empty base reserve, got (%f, %f)", tokensOut, newPrice)
	}
}

func TestSimulateSell_RoundTripIdentity(t *testing.T) {
	// Selling exactly what a raw buy produced must return the original cash
	// when no fee is involved (pure constant-product symmetry).
	tokensOut, _ := SimulateBuy(1000, 100, 10)
	cashOut, _ := SimulateSell(1000-tokensOut, 110, tokensOut)

	if !almostEqual(cashOut, 10, 1e-6) {
		t.Errorf("expected feeless round trip to return 10 cash, got %f", cashOut)
	}
}

func TestQuoteBuy_WorkedExample(t *testing.T) {
	// Worked by hand: after the 0.3% fee, tokensOut is about 90.64 and the
	// price recomputed from (909.36, 110) is about 0.1209.
	q := QuoteBuy(1000, 100, 10, FeeRate)

	raw := 1000 - 100000.0/110
	wantOut := raw * (1 - FeeRate)
	if !almostEqual(q.TokensOut, wantOut, 1e-6) {
		t.Errorf("expected tokensOut %f, got %f", wantOut, q.TokensOut)
	}
	if !almostEqual(q.NewTokenReserve, 1000-wantOut, 1e-6) {
		t.Errorf("expected token reserve %f, got %f", 1000-wantOut, q.NewTokenReserve)
	}
	if q.NewBaseReserve != 110 {
		t.Errorf("expected base reserve 110, got %f", q.NewBaseReserve)
	}

	wantPrice := 110 / (1000 - wantOut)
	if !almostEqual(q.NewPrice, wantPrice, 1e-9) {
		t.Errorf("expected price %f, got %f", wantPrice, q.NewPrice)
	}
	if math.Abs(q.NewPrice-0.1209) > 0.0005 {
		t.Errorf("expected price near 0.1209, got %f", q.NewPrice)
	}
}

func TestQuoteBuy_PriceConsistentWithReserves(t *testing.T) {
	q := QuoteBuy(5000, 2500, 137.5, FeeRate)

	if !almostEqual(q.NewPrice, q.NewBaseReserve/q.NewTokenReserve, tolerance) {
		t.Errorf("price %f inconsistent with reserves %f/%f", q.NewPrice, q.NewBaseReserve, q.NewTokenReserve)
	}
}

func TestQuoteBuy_ConstantNonDecreasing(t *testing.T) {
	tokenReserve, baseReserve := 1000.0, 100.0
	k := tokenReserve * baseReserve

	for i := 0; i < 50; i++ {
		q := QuoteBuy(tokenReserve, baseReserve, 7.3, FeeRate)
		tokenReserve, baseReserve = q.NewTokenReserve, q.NewBaseReserve

		newK := tokenReserve * baseReserve
		if newK < k-tolerance {
			t.Fatalf("pool constant decreased on buy %d: %f -> %f", i, k, newK)
		}
		k = newK
	}
}

func TestQuoteSell_ConstantNonDecreasing(t *testing.T) {
	tokenReserve, baseReserve := 1000.0, 100.0
	k := tokenReserve * baseReserve

	for i := 0; i < 50; i++ {
		q := QuoteSell(tokenReserve, baseReserve, 11.0, FeeRate)
		tokenReserve, baseReserve = q.NewTokenReserve, q.NewBaseReserve

		newK := tokenReserve * baseReserve
		if newK < k-tolerance {
			t.Fatalf("pool constant decreased on sell %d: %f -> %f", i, k, newK)
		}
		k = newK
	}
}

func TestFeeDrag_SellThenBuyReturnsLess(t *testing.T) {
	// Sell, then immediately buy back with the cash received: fee drag on
	// both legs must return strictly less token than was sold.
	tokenReserve, baseReserve := 1000.0, 100.0
	sold := 50.0

	s := QuoteSell(tokenReserve, baseReserve, sold, FeeRate)
	b := QuoteBuy(s.NewTokenReserve, s.NewBaseReserve, s.CashOut, FeeRate)

	if b.TokensOut >= sold {
		t.Errorf("expected round trip to lose tokens to fees: sold %f, got back %f", sold, b.TokensOut)
	}
}

func TestPriceImpactPercent_GrowsWithSize(t *testing.T) {
	small := PriceImpactPercent(1000, 100, 0.10, 1, true)
	large := PriceImpactPercent(1000, 100, 0.10, 50, true)

	if small <= 0 {
		t.Errorf("expected positive impact for small buy, got %f", small)
	}
	if large <= small {
		t.Errorf("expected impact to grow with size: small %f, large %f", small, large)
	}
}

func TestPriceImpactPercent_SellDirection(t *testing.T) {
	impact := PriceImpactPercent(1000, 100, 0.10, 100, false)
	if impact <= 0 {
		t.Errorf("expected positive impact for sell, got %f", impact)
	}
}

func TestDriftReserves_PreservesConstant(t *testing.T) {
	tokenReserve, baseReserve := 1000.0, 100.0
	k := tokenReserve * baseReserve

	newToken, newBase := DriftReserves(tokenReserve, baseReserve, 0.13)

	if !almostEqual(newToken*newBase, k, 1e-6) {
		t.Errorf("drift changed pool constant: %f -> %f", k, newToken*newBase)
	}
	if !almostEqual(newBase/newToken, 0.13, 1e-9) {
		t.Errorf("drift missed target price 0.13, got %f", newBase/newToken)
	}
}

func TestDriftReserves_IgnoresDegenerateInput(t *testing.T) {
	newToken, newBase := DriftReserves(0, 100, 0.5)
	if newToken != 0 || newBase != 100 {
		t.Errorf("expected degenerate reserves unchanged, got (%f, %f)", newToken, newBase)
	}
}
