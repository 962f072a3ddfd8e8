package escrow

import (
	"time"
)

// DeriveStatus computes the lifecycle status from the stored status, the funding progress and the given time.
// Only a campaign that is still funding changes its status over time.
func DeriveStatus(stored Status, totalRaised uint64, softCap uint64, fundingDeadline time.Time, now time.Time) Status {

	if stored != StatusFunding {
		return stored
	}

	if totalRaised >= softCap {
		return StatusFunded
	}

	if !now.Before(fundingDeadline) {
		return StatusFailed
	}

	return StatusFunding
}

// IsTerminal returns whether a campaign in the given status can no longer change its status.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusCompleted || s == StatusCancelled
}
