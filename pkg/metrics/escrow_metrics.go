package metrics

import (
	"go.uber.org/atomic"

	"github.com/gohornet/escrow/pkg/model/escrow"
)

// EscrowMetrics defines escrow metrics over the entire runtime of the node.
type EscrowMetrics struct {
	// The number of created escrows.
	EscrowsCreated atomic.Uint32
	// The number of accepted contributions.
	Contributions atomic.Uint32
	// The sum of all accepted contributions.
	ContributedAmount atomic.Uint64
	// The number of contributions that exceeded the hard cap.
	ExcessReturns atomic.Uint32
	// The sum of all amounts sent back because of the hard cap.
	ExcessReturnedAmount atomic.Uint64
	// The number of paid refunds.
	Refunds atomic.Uint32
	// The sum of all paid refunds.
	RefundedAmount atomic.Uint64
	// The number of submitted milestones.
	MilestonesSubmitted atomic.Uint32
	// The number of approved milestones.
	MilestonesApproved atomic.Uint32
	// The number of rejected milestones.
	MilestonesRejected atomic.Uint32
	// The sum of all released funds.
	ReleasedAmount atomic.Uint64
	// The number of milestone votes.
	Votes atomic.Uint32
	// The number of emergency votes.
	EmergencyVotes atomic.Uint32
	// The number of escrows that ended in the failed state.
	EscrowsFailed atomic.Uint32
	// The number of escrows that were cancelled.
	EscrowsCancelled atomic.Uint32
	// The number of escrows that released all milestones.
	EscrowsCompleted atomic.Uint32
}

// Record updates the metrics with the given escrow log record.
func (m *EscrowMetrics) Record(record escrow.LogRecord) {
	switch r := record.(type) {
	case *escrow.EscrowCreatedRecord:
		m.EscrowsCreated.Inc()
	case *escrow.ContributionMadeRecord:
		m.Contributions.Inc()
		m.ContributedAmount.Add(r.Amount)
	case *escrow.ExcessReturnedRecord:
		m.ExcessReturns.Inc()
		m.ExcessReturnedAmount.Add(r.Amount)
	case *escrow.RefundClaimedRecord:
		m.Refunds.Inc()
		m.RefundedAmount.Add(r.Amount)
	case *escrow.MilestoneSubmittedRecord:
		m.MilestonesSubmitted.Inc()
	case *escrow.MilestoneApprovedRecord:
		m.MilestonesApproved.Inc()
	case *escrow.MilestoneRejectedRecord:
		m.MilestonesRejected.Inc()
	case *escrow.FundsReleasedRecord:
		m.ReleasedAmount.Add(r.Amount)
	case *escrow.VoteCastRecord:
		m.Votes.Inc()
	case *escrow.EmergencyVoteCastRecord:
		m.EmergencyVotes.Inc()
	case *escrow.StatusChangedRecord:
		switch r.To {
		case escrow.StatusFailed:
			m.EscrowsFailed.Inc()
		case escrow.StatusCancelled:
			m.EscrowsCancelled.Inc()
		case escrow.StatusCompleted:
			m.EscrowsCompleted.Inc()
		}
	}
}
