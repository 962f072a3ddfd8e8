package escrow

// refundAmount computes the refund a contributor may claim.
//
// Every contributor is entitled to its share of the funds that were not released,
// contributed * (totalRaised - totalReleased) / totalRaised. The refund is the part of
// that entitlement that was not claimed yet. Refunds are available if the campaign failed,
// was cancelled, or the current milestone was rejected.
// This deliberately differs from scaling the unclaimed contribution by remaining/outstanding,
// which would make the payout depend on the order in which contributors claim.
func refundAmount(status Status, contributor *Contributor, t *totals, current *Milestone) uint64 {

	if contributor == nil || contributor.Contributed == 0 || t.totalRaised == 0 {
		return 0
	}

	switch status {
	case StatusFailed, StatusCancelled:
	case StatusFunded:
		if current == nil || current.Status != MilestoneRejected {
			return 0
		}
	default:
		return 0
	}

	entitlement := mulDiv(contributor.Contributed, t.totalRaised-t.totalReleased, t.totalRaised)
	if entitlement <= contributor.RefundClaimed {
		return 0
	}

	refund := entitlement - contributor.RefundClaimed
	if balance := t.balance(); refund > balance {
		refund = balance
	}

	return refund
}
