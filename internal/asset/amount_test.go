package asset_test

import (
	"math/big"
	"testing"

	"github.com/solarb/arbitrage-detector/internal/asset"
	"github.com/shopspring/decimal"
)

func TestAmount_Basic(t *testing.T) {
	// 1 SOL = 1e9 lamports
	oneSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(1e9))

	if oneSOL.IsZero() {
		t.Error("expected non-zero amount")
	}

	d := oneSOL.ToDecimal()
	if !d.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", d.String())
	}

	if oneSOL.String() != "1 SOL" {
		t.Errorf("expected '1 SOL', got '%s'", oneSOL.String())
	}
}

func TestAmount_Add(t *testing.T) {
	oneSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(1e9))
	twoSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(2e9))

	sum, err := oneSOL.Add(twoSOL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := decimal.NewFromInt(3)
	if !sum.ToDecimal().Equal(expected) {
		t.Errorf("expected 3, got %s", sum.ToDecimal().String())
	}
}

func TestAmount_CannotAddDifferentAssets(t *testing.T) {
	oneSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(1e9))
	oneUSDC := asset.NewAmount(asset.SolanaUSDC, big.NewInt(1e6))

	_, err := oneSOL.Add(oneUSDC)
	if err == nil {
		t.Error("expected error when adding different assets")
	}
}

func TestAmount_Sub(t *testing.T) {
	threeSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(3e9))
	oneSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(1e9))

	diff, err := threeSOL.Sub(oneSOL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := decimal.NewFromInt(2)
	if !diff.ToDecimal().Equal(expected) {
		t.Errorf("expected 2, got %s", diff.ToDecimal().String())
	}
}

func TestAmount_SubNegativeError(t *testing.T) {
	oneSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(1e9))
	twoSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(2e9))

	_, err := oneSOL.Sub(twoSOL)
	if err == nil {
		t.Error("expected error for negative result")
	}
}

func TestParseDecimal(t *testing.T) {
	// Parse "1.5" SOL
	d := decimal.NewFromFloat(1.5)
	amount, err := asset.ParseDecimal(asset.SolanaWSOL, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should be 1.5e9 lamports
	expected := big.NewInt(1500000000)

	if amount.Raw().Cmp(expected) != 0 {
		t.Errorf("expected %s, got %s", expected.String(), amount.Raw().String())
	}
}

func TestParseDecimal_TooManyDecimals(t *testing.T) {
	// USDC has 6 decimals, try to parse 1.1234567 (7 decimals)
	d := decimal.NewFromFloat(1.1234567)
	_, err := asset.ParseDecimal(asset.SolanaUSDC, d)
	if err == nil {
		t.Error("expected error for too many decimals")
	}
}

func TestPrice_Convert(t *testing.T) {
	// SOL/USDC price = 150
	price := asset.NewPriceNow(asset.SolanaWSOL, asset.SolanaUSDC, decimal.NewFromInt(150))

	oneSOL := asset.NewAmount(asset.SolanaWSOL, big.NewInt(1e9))

	usdc, err := price.Convert(oneSOL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedUSDC := decimal.NewFromInt(150)
	if !usdc.ToDecimal().Equal(expectedUSDC) {
		t.Errorf("expected %s USDC, got %s", expectedUSDC.String(), usdc.ToDecimal().String())
	}
}

func TestPrice_Invert(t *testing.T) {
	// SOL/USDC = 200
	price := asset.NewPriceNow(asset.SolanaWSOL, asset.SolanaUSDC, decimal.NewFromInt(200))

	// Invert to USDC/SOL = 0.005
	inverted := price.Invert()

	expected := decimal.NewFromFloat(0.005)
	diff := inverted.Rate().Sub(expected).Abs()
	if diff.GreaterThan(decimal.NewFromFloat(0.0000001)) {
		t.Errorf("expected ~0.005, got %s", inverted.Rate().String())
	}
}

func TestAssetID_Identity(t *testing.T) {
	usdc1 := asset.NewSolanaAssetID(asset.MintUSDC)
	usdc2 := asset.NewSolanaAssetID(asset.MintUSDC)

	if !usdc1.Equals(usdc2) {
		t.Error("same mint should have equal IDs")
	}

	usdt := asset.NewSolanaAssetID(asset.MintUSDT)
	if usdc1.Equals(usdt) {
		t.Error("different mints should have different IDs")
	}

	if usdc1.Equals(asset.IDUSD) {
		t.Error("a solana asset and a fiat asset must never be equal")
	}
}

func TestRegistry(t *testing.T) {
	r := asset.DefaultRegistry()

	sol, ok := r.GetByMint(asset.MintWSOL)
	if !ok {
		t.Fatal("SOL not found in registry")
	}
	if sol.Symbol() != "SOL" {
		t.Errorf("expected SOL, got %s", sol.Symbol())
	}

	usdc, ok := r.GetByMint(asset.MintUSDC)
	if !ok {
		t.Fatal("USDC not found in registry")
	}
	if usdc.Decimals() != 6 {
		t.Errorf("expected 6 decimals, got %d", usdc.Decimals())
	}
}

func TestRegistry_MustNewSolanaToken(t *testing.T) {
	r := asset.NewRegistry()
	bonk := asset.MustNewSolanaToken("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263", "BONK", 5)
	r.Register(bonk)

	got, ok := r.GetByMint("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263")
	if !ok {
		t.Fatal("configured token not found after registration")
	}
	if got.Decimals() != 5 {
		t.Errorf("expected 5 decimals, got %d", got.Decimals())
	}
}
