package asset

// Well-known Solana mint addresses.
const (
	// MintUSDC is the canonical USDC mint on Solana mainnet-beta.
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	// MintUSDT is the canonical USDT mint on Solana mainnet-beta.
	MintUSDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	// MintWSOL is wrapped SOL, the native token's SPL representation.
	MintWSOL = "So11111111111111111111111111111111111111112"
)

// Well-known AssetIDs.
var (
	IDSolanaUSDC = NewSolanaAssetID(MintUSDC)
	IDSolanaUSDT = NewSolanaAssetID(MintUSDT)
	IDSolanaWSOL = NewSolanaAssetID(MintWSOL)

	// IDUSD is the off-chain fiat unit notional/profit figures are expressed in.
	IDUSD = NewFiatAssetID("USD")
)

// Well-known Assets (pre-created instances). Actual DEX-tradable tokens beyond these
// are registered dynamically at startup from the configured token list - this registry
// seeds only the handful of assets every deployment needs regardless of configuration.
var (
	SolanaUSDC = NewAssetWithName(IDSolanaUSDC, "USDC", "USD Coin", 6)
	SolanaUSDT = NewAssetWithName(IDSolanaUSDT, "USDT", "Tether USD", 6)
	SolanaWSOL = NewAssetWithName(IDSolanaWSOL, "SOL", "Wrapped SOL", 9)

	USD = NewAssetWithName(IDUSD, "USD", "US Dollar", 2)
)

// DefaultRegistry returns a registry pre-populated with the well-known assets every
// deployment needs. Tradable tokens named in the configured token list are registered
// on top of this at startup via MustNewSolanaToken.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(SolanaUSDC)
	r.Register(SolanaUSDT)
	r.Register(SolanaWSOL)
	r.Register(USD)

	return r
}

// MustNewSolanaToken creates a new Solana SPL token asset with the given parameters.
// This is the entry point for registering the configured, deployment-specific token set.
func MustNewSolanaToken(mint, symbol string, decimals uint8) *Asset {
	return NewAssetWithName(NewSolanaAssetID(mint), symbol, symbol, decimals)
}
