package escrow

import (
	iotago "github.com/iotaledger/iota.go/v3"
)

// Resolution is the outcome of a milestone vote.
type Resolution byte

const (
	ResolutionUndecided Resolution = iota
	ResolutionApproved
	ResolutionRejected
)

func (r Resolution) String() string {
	switch r {
	case ResolutionApproved:
		return "approved"
	case ResolutionRejected:
		return "rejected"
	default:
		return "undecided"
	}
}

// Vote is a cast vote on a milestone.
type Vote struct {
	Approve bool
	// Weight is fixed at the time the vote was cast.
	Weight uint64
}

type voteKey struct {
	index uint16
	voter iotago.Ed25519Address
}

// EarlyResolution returns the outcome of a vote that is already certain,
// no matter how the weight that did not vote yet is going to be cast.
func EarlyResolution(votesFor uint64, votesAgainst uint64, totalRaised uint64) Resolution {

	remaining := totalRaised - (votesFor + votesAgainst)

	if reachesThreshold(votesFor, totalRaised, ApprovalThreshold) {
		return ResolutionApproved
	}

	if !reachesThreshold(votesFor+remaining, totalRaised, ApprovalThreshold) {
		return ResolutionRejected
	}

	return ResolutionUndecided
}

// FinalResolution returns the outcome of a vote after its voting period ended.
// A vote without any cast weight is approved.
func FinalResolution(votesFor uint64, votesAgainst uint64) Resolution {

	totalVotes := votesFor + votesAgainst
	if totalVotes == 0 {
		return ResolutionApproved
	}

	if reachesThreshold(votesFor, totalVotes, ApprovalThreshold) {
		return ResolutionApproved
	}

	return ResolutionRejected
}

// EmergencyReached returns whether the emergency vote weight cancels the campaign.
func EmergencyReached(emergencyWeight uint64, totalRaised uint64) bool {
	return totalRaised > 0 && reachesThreshold(emergencyWeight, totalRaised, EmergencyThreshold)
}
