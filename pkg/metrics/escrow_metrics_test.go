package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/events"

	"github.com/gohornet/escrow/pkg/metrics"
	"github.com/gohornet/escrow/pkg/model/escrow/test"
)

func TestEscrowMetricsFollowRecords(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	m := &metrics.EscrowMetrics{}
	for _, event := range env.Manager().Events.All() {
		event.Attach(events.NewClosure(m.Record))
	}

	e := env.CreateEscrow(1500, 600, 400)
	env.Contribute(e, env.Wallet1, 700)
	env.Contribute(e, env.Wallet2, 1000)

	env.Submit(e, 0)
	env.Vote(e, env.Wallet1, 0, true)
	env.Vote(e, env.Wallet2, 0, true)

	env.Submit(e, 1)
	// approval is out of reach after the first rejection
	env.Vote(e, env.Wallet1, 1, false)

	env.ClaimRefund(e, env.Wallet1)

	require.Equal(t, uint32(1), m.EscrowsCreated.Load())
	require.Equal(t, uint32(2), m.Contributions.Load())
	require.Equal(t, uint64(1500), m.ContributedAmount.Load())
	require.Equal(t, uint32(1), m.ExcessReturns.Load())
	require.Equal(t, uint64(200), m.ExcessReturnedAmount.Load())
	require.Equal(t, uint32(2), m.MilestonesSubmitted.Load())
	require.Equal(t, uint32(1), m.MilestonesApproved.Load())
	require.Equal(t, uint32(1), m.MilestonesRejected.Load())
	require.Equal(t, uint64(600), m.ReleasedAmount.Load())
	require.Equal(t, uint32(3), m.Votes.Load())
	require.Equal(t, uint32(1), m.Refunds.Load())
	require.Equal(t, uint64(700*900/1500), m.RefundedAmount.Load())
	require.Zero(t, m.EscrowsFailed.Load())
}
