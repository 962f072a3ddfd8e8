package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/metrics"
	"github.com/gohornet/escrow/pkg/model/escrow/test"
	"github.com/iotaledger/hive.go/events"
)

func TestCollectEscrow(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	m := &metrics.EscrowMetrics{}
	for _, event := range env.Manager().Events.All() {
		event.Attach(events.NewClosure(m.Record))
	}

	deps = dependencies{
		EscrowManager: env.Manager(),
		EscrowMetrics: m,
	}
	configureEscrow()

	funded := env.CreateEscrow(1000, 1000)
	env.CreateEscrow(2000, 1000)
	env.Contribute(funded, env.Wallet1, 1200)

	for _, collect := range collects {
		collect()
	}

	require.Equal(t, float64(1), testutil.ToFloat64(escrowCampaigns.WithLabelValues("funding")))
	require.Equal(t, float64(1), testutil.ToFloat64(escrowCampaigns.WithLabelValues("funded")))
	require.Equal(t, float64(2), testutil.ToFloat64(escrowRecords.WithLabelValues("escrow_created")))
	require.Equal(t, float64(1), testutil.ToFloat64(escrowRecords.WithLabelValues("excess_return")))
	require.Equal(t, float64(1000), testutil.ToFloat64(escrowAmounts.WithLabelValues("contributed")))
	require.Equal(t, float64(200), testutil.ToFloat64(escrowAmounts.WithLabelValues("excess_returned")))
}
