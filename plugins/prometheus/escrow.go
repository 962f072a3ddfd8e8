package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gohornet/escrow/pkg/metrics"
	"github.com/gohornet/escrow/pkg/model/escrow"
)

var (
	escrowCampaigns *prometheus.GaugeVec
	escrowRecords   *prometheus.GaugeVec
	escrowAmounts   *prometheus.GaugeVec
)

func configureEscrow() {
	escrowCampaigns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "escrow",
			Subsystem: "campaigns",
			Name:      "status",
			Help:      "The number of escrows per lifecycle status.",
		},
		[]string{"status"},
	)

	escrowRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "escrow",
			Subsystem: "records",
			Name:      "total",
			Help:      "The number of escrow records since the start of the node.",
		},
		[]string{"type"},
	)

	escrowAmounts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "escrow",
			Subsystem: "funds",
			Name:      "amount",
			Help:      "The moved funds since the start of the node.",
		},
		[]string{"type"},
	)

	registry.MustRegister(escrowCampaigns)
	registry.MustRegister(escrowRecords)
	registry.MustRegister(escrowAmounts)

	addCollect(collectEscrow)
}

func collectEscrow() {
	escrowCampaigns.Reset()
	for status, count := range deps.EscrowManager.EscrowsWithStatus() {
		escrowCampaigns.WithLabelValues(status.String()).Set(float64(count))
	}

	collectEscrowMetrics(deps.EscrowMetrics)
}

func collectEscrowMetrics(m *metrics.EscrowMetrics) {
	escrowRecords.WithLabelValues("escrow_created").Set(float64(m.EscrowsCreated.Load()))
	escrowRecords.WithLabelValues("contribution").Set(float64(m.Contributions.Load()))
	escrowRecords.WithLabelValues("excess_return").Set(float64(m.ExcessReturns.Load()))
	escrowRecords.WithLabelValues("refund").Set(float64(m.Refunds.Load()))
	escrowRecords.WithLabelValues("milestone_submitted").Set(float64(m.MilestonesSubmitted.Load()))
	escrowRecords.WithLabelValues("milestone_approved").Set(float64(m.MilestonesApproved.Load()))
	escrowRecords.WithLabelValues("milestone_rejected").Set(float64(m.MilestonesRejected.Load()))
	escrowRecords.WithLabelValues("vote").Set(float64(m.Votes.Load()))
	escrowRecords.WithLabelValues("emergency_vote").Set(float64(m.EmergencyVotes.Load()))
	escrowRecords.WithLabelValues(escrow.StatusFailed.String()).Set(float64(m.EscrowsFailed.Load()))
	escrowRecords.WithLabelValues(escrow.StatusCancelled.String()).Set(float64(m.EscrowsCancelled.Load()))
	escrowRecords.WithLabelValues(escrow.StatusCompleted.String()).Set(float64(m.EscrowsCompleted.Load()))

	escrowAmounts.WithLabelValues("contributed").Set(float64(m.ContributedAmount.Load()))
	escrowAmounts.WithLabelValues("excess_returned").Set(float64(m.ExcessReturnedAmount.Load()))
	escrowAmounts.WithLabelValues("refunded").Set(float64(m.RefundedAmount.Load()))
	escrowAmounts.WithLabelValues("released").Set(float64(m.ReleasedAmount.Load()))
}
