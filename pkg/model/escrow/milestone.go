package escrow

import (
	"time"
)

// Milestone is the record of a single milestone.
type Milestone struct {
	// Index is the position in the ordered list of milestones.
	Index uint16
	// Description of the deliverable.
	Description string
	// Amount to release on approval.
	Amount uint64
	// Deadline the recipient committed to.
	Deadline time.Time
	// Status of the milestone.
	Status MilestoneStatus
	// VotesFor is the weight of all approving votes.
	VotesFor uint64
	// VotesAgainst is the weight of all rejecting votes.
	VotesAgainst uint64
	// VotingDeadline is set when the milestone is submitted for voting.
	VotingDeadline time.Time
	// Released is the amount that was actually released on approval.
	Released uint64
}

// TotalVotes returns the weight of all cast votes.
func (m *Milestone) TotalVotes() uint64 {
	return m.VotesFor + m.VotesAgainst
}

// IsVotingOpen returns whether votes are accepted at the given time.
func (m *Milestone) IsVotingOpen(now time.Time) bool {
	return m.Status == MilestoneVoting && now.Before(m.VotingDeadline)
}

func (m *Milestone) clone() *Milestone {
	cpy := *m
	return &cpy
}

// registry holds the ordered milestones of a campaign. The count and order never change.
type registry struct {
	milestones []*Milestone
}

func newRegistry(specs []*MilestoneSpec) *registry {
	r := &registry{milestones: make([]*Milestone, len(specs))}
	for i, spec := range specs {
		r.milestones[i] = &Milestone{
			Index:       uint16(i),
			Description: spec.Description,
			Amount:      spec.Amount,
			Deadline:    spec.Deadline,
			Status:      MilestonePending,
		}
	}
	return r
}

func (r *registry) count() int {
	return len(r.milestones)
}

// milestone returns the milestone at the given index.
func (r *registry) milestone(index uint16) (*Milestone, error) {
	if int(index) >= len(r.milestones) {
		return nil, ErrUnknownMilestone
	}
	return r.milestones[index], nil
}

// current returns the milestone at the pointer, or nil if every milestone was approved.
func (r *registry) current(pointer uint16) *Milestone {
	if int(pointer) >= len(r.milestones) {
		return nil
	}
	return r.milestones[pointer]
}

func (r *registry) clone() *registry {
	cpy := &registry{milestones: make([]*Milestone, len(r.milestones))}
	for i, m := range r.milestones {
		cpy.milestones[i] = m.clone()
	}
	return cpy
}
