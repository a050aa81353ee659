package composer

import (
	"math/big"
)

const minDecimals = 1
const maxDecimals = 36

var big10 = big.NewInt(10)

// mulDiv computes floor(a * b / denominator) with an arbitrary-precision
// intermediate product, so the multiplication can never overflow regardless
// of the operands' magnitude. The division truncates towards zero, matching
// the downward rounding every caller of the composition pipeline expects.
func mulDiv(a *big.Int, b *big.Int, denominator *big.Int) *big.Int {
	result := big.NewInt(0).Mul(a, b)

	return result.Quo(result, denominator)
}

// pow10 returns 10^decimals as a big integer
func pow10(decimals uint32) *big.Int {
	return big.NewInt(0).Exp(big10, big.NewInt(int64(decimals)), nil)
}

// isValidDecimals returns true if the provided decimals value can produce a usable scaling unit
func isValidDecimals(decimals uint32) bool {
	return decimals >= minDecimals && decimals <= maxDecimals
}
