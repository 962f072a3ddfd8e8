package escrow

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "0", formatAmount(0))
	require.Equal(t, "1,500", formatAmount(1500))
	require.Equal(t, "9,223,372,036,854,775,807", formatAmount(math.MaxInt64))

	// amounts above the signed range stay positive
	require.Equal(t, "9,223,372,036,854,775,808", formatAmount(math.MaxInt64+1))
	require.Equal(t, "18,446,744,073,709,551,615", formatAmount(math.MaxUint64))
}
