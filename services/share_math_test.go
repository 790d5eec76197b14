package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenClaim(t *testing.T) {
	// 0.1% share of a 500,000 unit pool (6-decimal micro-units)
	assert.Equal(t, int64(5_000_000_000), TokenClaim(500_000_000_000, 100_000))

	// full share returns the whole pool
	assert.Equal(t, int64(500_000_000_000), TokenClaim(500_000_000_000, ShareDenominator1e7))

	// truncating division
	assert.Equal(t, int64(0), TokenClaim(99, 100_000))
	assert.Equal(t, int64(1), TokenClaim(100, 100_000))
	assert.Equal(t, int64(1), TokenClaim(199, 100_000))

	// degenerate inputs
	assert.Equal(t, int64(0), TokenClaim(0, 100_000))
	assert.Equal(t, int64(0), TokenClaim(-5, 100_000))
	assert.Equal(t, int64(0), TokenClaim(500_000_000_000, 0))
}

func TestTokenClaimLargePool(t *testing.T) {
	// pool * share overflows int64 before division; the result must not
	pool := int64(999_999_999) * 1_000_000
	got := TokenClaim(pool, 100_000)
	assert.Equal(t, pool/100, got)
}

func TestSplitFee(t *testing.T) {
	fee, payout := SplitFee(10_000_000, 250)
	assert.Equal(t, int64(250_000), fee)
	assert.Equal(t, int64(9_750_000), payout)

	fee, payout = SplitFee(10_000_000, 0)
	assert.Equal(t, int64(0), fee)
	assert.Equal(t, int64(10_000_000), payout)

	fee, payout = SplitFee(10_000_000, BPSDenominator)
	assert.Equal(t, int64(10_000_000), fee)
	assert.Equal(t, int64(0), payout)

	// truncation favors the payout side
	fee, payout = SplitFee(3, 250)
	assert.Equal(t, int64(0), fee)
	assert.Equal(t, int64(3), payout)
}

func TestSplitFeeConservation(t *testing.T) {
	for _, claim := range []int64{1, 3, 999, 5_000_000, 10_000_000, 123_456_789} {
		for _, bps := range []int64{0, 1, 250, 1000, 9999, 10_000} {
			fee, payout := SplitFee(claim, bps)
			assert.Equal(t, claim, fee+payout, "claim=%d bps=%d", claim, bps)
			assert.GreaterOrEqual(t, fee, int64(0))
			assert.GreaterOrEqual(t, payout, int64(0))
		}
	}
}
