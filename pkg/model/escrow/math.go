package escrow

import (
	"math/big"
	"math/bits"

	"github.com/dustin/go-humanize"
)

const (
	// ApprovalThreshold is the percentage of vote weight required to approve a milestone.
	ApprovalThreshold = 66
	// EmergencyThreshold is the percentage of the raised funds required to cancel a campaign.
	EmergencyThreshold = 75

	percentScale = 100
)

// mulDiv returns floor(a*b/c) using a 128 bit intermediate product.
// a must not be greater than c.
func mulDiv(a uint64, b uint64, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

// mulCmp compares a*x with b*y without overflowing.
// It returns -1 if a*x < b*y, 0 if both are equal and +1 otherwise.
func mulCmp(a uint64, x uint64, b uint64, y uint64) int {
	aHi, aLo := bits.Mul64(a, x)
	bHi, bLo := bits.Mul64(b, y)

	switch {
	case aHi < bHi:
		return -1
	case aHi > bHi:
		return 1
	case aLo < bLo:
		return -1
	case aLo > bLo:
		return 1
	default:
		return 0
	}
}

// reachesThreshold returns whether part*100 >= threshold*whole.
func reachesThreshold(part uint64, whole uint64, threshold uint64) bool {
	return mulCmp(part, percentScale, whole, threshold) >= 0
}

// formatAmount formats an amount with thousands separators, for log output.
func formatAmount(amount uint64) string {
	return humanize.BigComma(new(big.Int).SetUint64(amount))
}
