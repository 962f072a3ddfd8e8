package escrow

import (
	"time"

	iotago "github.com/iotaledger/iota.go/v3"
)

// View is an immutable snapshot of the last committed state of an escrow.
type View struct {
	EscrowID  EscrowID
	Creator   iotago.Ed25519Address
	CreatedAt time.Time
	Params    *Params

	// StoredStatus is the last persisted lifecycle status, use Status to get the derived one.
	StoredStatus     Status
	TotalRaised      uint64
	TotalReleased    uint64
	TotalRefunded    uint64
	ContributorCount uint32
	// CurrentMilestone is the index of the milestone at the pointer.
	CurrentMilestone uint16
	EmergencyWeight  uint64
	Milestones       []*Milestone

	totals         totals
	contributors   map[iotago.Ed25519Address]Contributor
	votes          map[voteKey]Vote
	emergencyVotes map[iotago.Ed25519Address]uint64
}

// publish stores a snapshot of the current state. The lock must be held.
func (e *Escrow) publish() {

	registry := e.registry.clone()

	v := &View{
		EscrowID:         e.id,
		Creator:          e.creator,
		CreatedAt:        e.createdAt,
		Params:           e.params,
		StoredStatus:     e.totals.status,
		TotalRaised:      e.totals.totalRaised,
		TotalReleased:    e.totals.totalReleased,
		TotalRefunded:    e.totals.totalRefunded,
		ContributorCount: e.totals.contributorCount,
		CurrentMilestone: e.totals.pointer,
		EmergencyWeight:  e.totals.emergencyWeight,
		Milestones:       registry.milestones,
		totals:           e.totals,
		contributors:     make(map[iotago.Ed25519Address]Contributor, len(e.ledger.contributors)),
		votes:            make(map[voteKey]Vote, len(e.votes)),
		emergencyVotes:   make(map[iotago.Ed25519Address]uint64, len(e.emergencyVotes)),
	}

	for address, c := range e.ledger.contributors {
		v.contributors[address] = *c
	}
	for key, vote := range e.votes {
		v.votes[key] = *vote
	}
	for voter, weight := range e.emergencyVotes {
		v.emergencyVotes[voter] = weight
	}

	e.view.Store(v)
}

// View returns the last committed state of the escrow. It never blocks.
func (e *Escrow) View() *View {
	return e.view.Load().(*View)
}

// Status returns the current lifecycle status of the escrow.
func (e *Escrow) Status() Status {
	return e.View().Status(e.clock())
}

// Contribution returns the ledger entry of the given contributor.
func (e *Escrow) Contribution(contributor iotago.Ed25519Address) Contributor {
	return e.View().Contribution(contributor)
}

// RefundAmount returns the refund the contributor could claim right now.
func (e *Escrow) RefundAmount(contributor iotago.Ed25519Address) uint64 {
	return e.View().RefundAmount(contributor, e.clock())
}

// Status derives the lifecycle status at the given time.
func (v *View) Status(now time.Time) Status {
	return DeriveStatus(v.StoredStatus, v.TotalRaised, v.Params.SoftCap, v.Params.FundingDeadline, now)
}

// Balance is the amount still held by the escrow.
func (v *View) Balance() uint64 {
	return v.totals.balance()
}

// MilestoneCount returns the number of milestones.
func (v *View) MilestoneCount() int {
	return len(v.Milestones)
}

// Milestone returns the milestone with the given index.
func (v *View) Milestone(index uint16) (*Milestone, error) {
	if int(index) >= len(v.Milestones) {
		return nil, ErrUnknownMilestone
	}
	return v.Milestones[index], nil
}

// Contribution returns the ledger entry of the given contributor.
func (v *View) Contribution(contributor iotago.Ed25519Address) Contributor {
	return v.contributors[contributor]
}

// Contributors returns the ledger entries of all contributors.
func (v *View) Contributors() map[iotago.Ed25519Address]Contributor {
	result := make(map[iotago.Ed25519Address]Contributor, len(v.contributors))
	for address, c := range v.contributors {
		result[address] = c
	}
	return result
}

// RefundAmount returns the refund the contributor could claim at the given time.
func (v *View) RefundAmount(contributor iotago.Ed25519Address, now time.Time) uint64 {
	c, exists := v.contributors[contributor]
	if !exists {
		return 0
	}

	var current *Milestone
	if int(v.CurrentMilestone) < len(v.Milestones) {
		current = v.Milestones[v.CurrentMilestone]
	}

	return refundAmount(v.Status(now), &c, &v.totals, current)
}

// HasVoted returns whether the voter voted on the given milestone.
func (v *View) HasVoted(index uint16, voter iotago.Ed25519Address) bool {
	_, voted := v.votes[voteKey{index: index, voter: voter}]
	return voted
}

// Vote returns the vote of the voter on the given milestone.
func (v *View) Vote(index uint16, voter iotago.Ed25519Address) (Vote, bool) {
	vote, voted := v.votes[voteKey{index: index, voter: voter}]
	return vote, voted
}

// HasVotedEmergency returns whether the voter voted for an emergency cancellation.
func (v *View) HasVotedEmergency(voter iotago.Ed25519Address) bool {
	_, voted := v.emergencyVotes[voter]
	return voted
}
