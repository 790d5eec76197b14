package services

import "math/big"

// Fixed-point share arithmetic for the distribution engine. Shares are
// expressed in parts-per-ten-million, fees in basis points. All division is
// truncating; the remainder stays in the funding pool and is swept at close.
const (
	ShareDenominator1e7 = 10_000_000
	BPSDenominator      = 10_000
)

// TokenClaim converts a pooled total and a per-token share fraction into the
// integer amount one token can claim: floor(pool * share1e7 / 1e7).
// The intermediate product can exceed int64, so the multiply runs in big.Int.
func TokenClaim(pool, share1e7 int64) int64 {
	if pool <= 0 || share1e7 <= 0 {
		return 0
	}
	claim := new(big.Int).Mul(big.NewInt(pool), big.NewInt(share1e7))
	claim.Quo(claim, big.NewInt(ShareDenominator1e7))
	return claim.Int64()
}

// AddPooledClaim adds a collection's minted × per-token product to a running
// pooled total.
func AddPooledClaim(total *big.Int, minted, perToken int64) {
	total.Add(total, new(big.Int).Mul(big.NewInt(minted), big.NewInt(perToken)))
}

// PooledTotalsInt64 narrows the two pooled totals back to int64. A share and
// earnings combination whose pooled total (or combined total) does not fit is
// rejected rather than allowed to wrap.
func PooledTotalsInt64(tournament, other *big.Int) (int64, int64, error) {
	if !tournament.IsInt64() || !other.IsInt64() ||
		!new(big.Int).Add(tournament, other).IsInt64() {
		return 0, 0, ErrEarningsOutOfRange
	}
	return tournament.Int64(), other.Int64(), nil
}

// SplitFee splits a claim amount into the platform fee and the claimant
// payout: fee = floor(claim * feeBPS / 10000), payout = claim - fee.
// Truncation always favors the payout side; fee + payout == claim exactly.
func SplitFee(claim, feeBPS int64) (fee, payout int64) {
	if claim <= 0 {
		return 0, 0
	}
	f := new(big.Int).Mul(big.NewInt(claim), big.NewInt(feeBPS))
	f.Quo(f, big.NewInt(BPSDenominator))
	fee = f.Int64()
	return fee, claim - fee
}
