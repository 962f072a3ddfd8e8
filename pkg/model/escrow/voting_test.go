package escrow

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEarlyResolution(t *testing.T) {

	// 66% of the raised funds approve, even if the rest did not vote yet
	require.Equal(t, ResolutionApproved, EarlyResolution(66, 0, 100))
	require.Equal(t, ResolutionApproved, EarlyResolution(7, 0, 10))
	require.Equal(t, ResolutionUndecided, EarlyResolution(65, 0, 100))
	require.Equal(t, ResolutionUndecided, EarlyResolution(5, 0, 10))

	// approval is no longer reachable if all remaining weight votes for it
	require.Equal(t, ResolutionRejected, EarlyResolution(0, 35, 100))
	require.Equal(t, ResolutionUndecided, EarlyResolution(0, 34, 100))
	require.Equal(t, ResolutionRejected, EarlyResolution(0, 10, 10))
	require.Equal(t, ResolutionRejected, EarlyResolution(30, 40, 100))

	// exact boundary 2/3 of 3
	require.Equal(t, ResolutionApproved, EarlyResolution(2, 1, 3))

	// no overflow for huge amounts
	require.Equal(t, ResolutionApproved, EarlyResolution(math.MaxUint64-1, 1, math.MaxUint64))
	require.Equal(t, ResolutionRejected, EarlyResolution(0, math.MaxUint64/2, math.MaxUint64))
}

func TestFinalResolution(t *testing.T) {

	// no votes are approved
	require.Equal(t, ResolutionApproved, FinalResolution(0, 0))

	require.Equal(t, ResolutionApproved, FinalResolution(5, 0))
	require.Equal(t, ResolutionApproved, FinalResolution(66, 34))
	require.Equal(t, ResolutionRejected, FinalResolution(65, 35))
	require.Equal(t, ResolutionRejected, FinalResolution(0, 1))

	// 2 of 3 is 66.67%
	require.Equal(t, ResolutionApproved, FinalResolution(2, 1))
	// 65.99% must not be rounded up
	require.Equal(t, ResolutionRejected, FinalResolution(6599, 3401))
}

func TestEmergencyReached(t *testing.T) {
	require.False(t, EmergencyReached(0, 0))
	require.False(t, EmergencyReached(74, 100))
	require.True(t, EmergencyReached(75, 100))
	require.True(t, EmergencyReached(3, 4))
	require.False(t, EmergencyReached(2, 4))
}

func TestMulDiv(t *testing.T) {
	require.Equal(t, uint64(3), mulDiv(6, 6, 10))
	require.Equal(t, uint64(2), mulDiv(4, 6, 10))
	require.Equal(t, uint64(0), mulDiv(0, 6, 10))
	require.Equal(t, uint64(math.MaxUint64/2), mulDiv(math.MaxUint64/2, math.MaxUint64, math.MaxUint64))
}

func TestMulCmp(t *testing.T) {
	require.Equal(t, 0, mulCmp(2, 100, 200, 1))
	require.Equal(t, -1, mulCmp(1, 100, 101, 1))
	require.Equal(t, 1, mulCmp(math.MaxUint64, 100, math.MaxUint64, 99))
}

func TestDeriveStatus(t *testing.T) {

	deadline := time.Date(2022, time.March, 22, 0, 0, 0, 0, time.UTC)
	before := deadline.Add(-time.Second)

	require.Equal(t, StatusFunding, DeriveStatus(StatusFunding, 5, 10, deadline, before))
	require.Equal(t, StatusFunded, DeriveStatus(StatusFunding, 10, 10, deadline, before))
	require.Equal(t, StatusFunded, DeriveStatus(StatusFunding, 10, 10, deadline, deadline))

	// the deadline has passed once it is reached
	require.Equal(t, StatusFailed, DeriveStatus(StatusFunding, 5, 10, deadline, deadline))
	require.Equal(t, StatusFailed, DeriveStatus(StatusFunding, 0, 10, deadline, deadline.Add(time.Hour)))

	// stored states other than funding are final for the derivation
	for _, stored := range []Status{StatusFunded, StatusFailed, StatusCompleted, StatusCancelled} {
		require.Equal(t, stored, DeriveStatus(stored, 0, 10, deadline, before))
		require.Equal(t, stored, DeriveStatus(stored, 0, 10, deadline, deadline))
	}
}

func TestRefundAmount(t *testing.T) {

	contributor := &Contributor{Contributed: 6}
	rejected := &Milestone{Status: MilestoneRejected}
	voting := &Milestone{Status: MilestoneVoting}

	// failed campaigns refund everything
	require.Equal(t, uint64(6), refundAmount(StatusFailed, contributor, &totals{totalRaised: 10}, nil))
	require.Equal(t, uint64(6), refundAmount(StatusFailed, contributor, &totals{totalRaised: 10, totalRefunded: 4}, nil))

	// later claimants are not disadvantaged
	require.Equal(t, uint64(4), refundAmount(StatusFailed, &Contributor{Contributed: 4}, &totals{totalRaised: 10, totalRefunded: 6}, nil))

	// cancelled campaigns refund the unreleased share
	require.Equal(t, uint64(3), refundAmount(StatusCancelled, contributor, &totals{totalRaised: 10, totalReleased: 4}, nil))

	// rejected milestones refund the unreleased share minus what was claimed
	require.Equal(t, uint64(3), refundAmount(StatusFunded, contributor, &totals{totalRaised: 10, totalReleased: 4}, rejected))
	require.Equal(t, uint64(0), refundAmount(StatusFunded, &Contributor{Contributed: 6, RefundClaimed: 3}, &totals{totalRaised: 10, totalReleased: 4, totalRefunded: 3}, rejected))

	// nothing otherwise
	require.Equal(t, uint64(0), refundAmount(StatusFunded, contributor, &totals{totalRaised: 10}, voting))
	require.Equal(t, uint64(0), refundAmount(StatusFunded, contributor, &totals{totalRaised: 10}, nil))
	require.Equal(t, uint64(0), refundAmount(StatusFunding, contributor, &totals{totalRaised: 6}, nil))
	require.Equal(t, uint64(0), refundAmount(StatusCompleted, contributor, &totals{totalRaised: 10, totalReleased: 10}, nil))
	require.Equal(t, uint64(0), refundAmount(StatusFailed, nil, &totals{totalRaised: 10}, nil))
}

func TestAcceptContribution(t *testing.T) {

	accepted, excess := acceptContribution(0, 20, 25)
	require.Equal(t, uint64(20), accepted)
	require.Equal(t, uint64(5), excess)

	accepted, excess = acceptContribution(15, 20, 5)
	require.Equal(t, uint64(5), accepted)
	require.Equal(t, uint64(0), excess)

	accepted, excess = acceptContribution(0, 20, math.MaxUint64)
	require.Equal(t, uint64(20), accepted)
	require.Equal(t, uint64(math.MaxUint64-20), excess)
}
