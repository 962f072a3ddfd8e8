package escrow

import (
	"context"
	"time"

	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/syncutils"
	iotago "github.com/iotaledger/iota.go/v3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/gohornet/escrow/pkg/utils"
)

// Escrow holds the pooled funds of a single campaign and releases them milestone by milestone.
// All operations of an escrow are serialized. Funds only leave the escrow through its gateway,
// after the bookkeeping that justifies the payment was persisted.
type Escrow struct {
	syncutils.Mutex
	*utils.WrappedLogger

	id        EscrowID
	creator   iotago.Ed25519Address
	createdAt time.Time
	sequence  uint64
	params    *Params

	totals         totals
	ledger         *ledger
	registry       *registry
	votes          map[voteKey]*Vote
	emergencyVotes map[iotago.Ed25519Address]uint64

	store   kvstore.KVStore
	gateway *gateway
	events  *Events
	clock   func() time.Time

	// the last committed state, readable without holding the lock.
	view atomic.Value
}

func newEscrow(h *header, store kvstore.KVStore, transferer Transferer, events *Events, clock func() time.Time, wrappedLogger *utils.WrappedLogger) *Escrow {
	id := h.id()
	e := &Escrow{
		WrappedLogger:  wrappedLogger,
		id:             id,
		creator:        h.creator,
		createdAt:      h.createdAt,
		sequence:       h.sequence,
		params:         h.params,
		totals:         totals{status: StatusFunding},
		ledger:         newLedger(),
		registry:       newRegistry(h.params.Milestones),
		votes:          make(map[voteKey]*Vote),
		emergencyVotes: make(map[iotago.Ed25519Address]uint64),
		store:          store,
		gateway:        newGateway(id, transferer),
		events:         events,
		clock:          clock,
	}
	return e
}

// ID returns the ID of the escrow.
func (e *Escrow) ID() EscrowID {
	return e.id
}

// Creator returns the address that created the escrow.
func (e *Escrow) Creator() iotago.Ed25519Address {
	return e.creator
}

// CreatedAt returns the creation time of the escrow.
func (e *Escrow) CreatedAt() time.Time {
	return e.createdAt
}

// Params returns the immutable parameters of the escrow.
func (e *Escrow) Params() *Params {
	return e.params
}

// execute runs an operation as a single atomic unit.
// The operation validates and mutates the state through the txn. Its records are persisted
// before the transfer is performed. If the operation or the transfer fails, the state is restored.
func (e *Escrow) execute(ctx context.Context, op func(tx *txn) error) error {

	// a call from inside one of our own transfers would wait for itself
	if inTransfer(ctx, e.id) {
		return ErrReentrantCall
	}

	e.Lock()

	tx := newTxn(e, e.clock())
	if err := op(tx); err != nil {
		tx.rollback()
		e.Unlock()
		return err
	}

	if !tx.hasChanges() {
		e.Unlock()
		return nil
	}

	if err := e.persist(tx); err != nil {
		tx.rollback()
		e.Unlock()
		return err
	}

	if tx.transfer != nil {
		if err := e.gateway.send(ctx, tx.transfer); err != nil {
			e.LogWarnf("escrow %s: %s", e.id.ToHex(), err)

			tx.rollback()
			compensationErr := e.persist(tx)
			e.Unlock()

			if compensationErr != nil {
				e.LogErrorf("escrow %s: restoring state after failed transfer failed: %s", e.id.ToHex(), compensationErr)
				e.events.CriticalError.Trigger(errors.Wrapf(compensationErr, "escrow %s: restoring state after failed transfer failed", e.id.ToHex()))
			}
			return err
		}
	}

	e.publish()
	records := tx.records
	e.Unlock()

	for _, record := range records {
		e.events.trigger(record)
	}

	return nil
}

// advance applies the lazily derived lifecycle status.
func (e *Escrow) advance(tx *txn) Status {
	status := DeriveStatus(e.totals.status, e.totals.totalRaised, e.params.SoftCap, e.params.FundingDeadline, tx.now)
	if status != e.totals.status {
		tx.setStatus(status)
	}
	return status
}

// SyncStatus persists the derived lifecycle status, so transitions that only depend on time
// (funding deadline passed) are recorded without waiting for the next operation.
func (e *Escrow) SyncStatus(ctx context.Context) (bool, error) {
	changed := false
	if err := e.execute(ctx, func(tx *txn) error {
		from := e.totals.status
		changed = e.advance(tx) != from
		return nil
	}); err != nil {
		return false, err
	}
	return changed, nil
}

// ContributionResult is the outcome of a contribution.
type ContributionResult struct {
	// Accepted is the part of the contribution that was booked.
	Accepted uint64
	// Returned is the part over the hard cap that was sent back to the contributor.
	Returned uint64
	// TotalRaised after the contribution.
	TotalRaised uint64
	// Status after the contribution.
	Status Status
}

// Contribute books the given amount that was attached by the contributor.
// The part that exceeds the hard cap is sent back in the same call.
func (e *Escrow) Contribute(ctx context.Context, contributor iotago.Ed25519Address, amount uint64) (*ContributionResult, error) {

	result := &ContributionResult{}

	if err := e.execute(ctx, func(tx *txn) error {

		if amount == 0 {
			return ErrInvalidAmount
		}

		switch status := DeriveStatus(e.totals.status, e.totals.totalRaised, e.params.SoftCap, e.params.FundingDeadline, tx.now); status {
		case StatusFunding:
		case StatusFailed:
			return ErrFundingDeadlinePassed
		case StatusFunded:
			if e.totals.totalRaised >= e.params.HardCap {
				return ErrHardCapReached
			}
			return ErrCampaignEnded
		default:
			return ErrCampaignEnded
		}

		accepted, excess := acceptContribution(e.totals.totalRaised, e.params.HardCap, amount)

		c := tx.touchContributor(contributor)
		t := tx.touchTotals()
		if c.Contributed == 0 {
			t.contributorCount++
		}
		c.Contributed += accepted
		t.totalRaised += accepted

		tx.log(&ContributionMadeRecord{
			EscrowID:    e.id,
			Contributor: contributor,
			Amount:      accepted,
			TotalRaised: t.totalRaised,
		})

		if excess > 0 {
			tx.log(&ExcessReturnedRecord{EscrowID: e.id, Contributor: contributor, Amount: excess})
			tx.send(contributor, excess, TransferReasonExcessReturn)
		}

		result.Accepted = accepted
		result.Returned = excess
		result.TotalRaised = t.totalRaised
		result.Status = e.advance(tx)

		return nil
	}); err != nil {
		return nil, err
	}

	e.LogDebugf("escrow %s: contribution of %d accepted, %d returned", e.id.ToHex(), result.Accepted, result.Returned)

	return result, nil
}

// ClaimRefund pays out the refund the contributor is entitled to.
func (e *Escrow) ClaimRefund(ctx context.Context, contributor iotago.Ed25519Address) (uint64, error) {

	var refund uint64

	if err := e.execute(ctx, func(tx *txn) error {

		status := e.advance(tx)

		c := e.ledger.contributor(contributor)
		if c == nil || c.Contributed == 0 {
			return ErrNotContributor
		}

		refund = refundAmount(status, c, &e.totals, e.registry.current(e.totals.pointer))
		if refund == 0 {
			return ErrNothingToRefund
		}

		c = tx.touchContributor(contributor)
		c.RefundClaimed += refund
		tx.touchTotals().totalRefunded += refund

		tx.log(&RefundClaimedRecord{EscrowID: e.id, Contributor: contributor, Amount: refund})
		tx.send(contributor, refund, TransferReasonRefund)

		return nil
	}); err != nil {
		return 0, err
	}

	e.LogDebugf("escrow %s: refund of %d claimed", e.id.ToHex(), refund)

	return refund, nil
}

// SubmitMilestone opens the vote on the current milestone. Only the recipient may submit.
func (e *Escrow) SubmitMilestone(ctx context.Context, caller iotago.Ed25519Address, index uint16) error {

	return e.execute(ctx, func(tx *txn) error {

		if caller != e.params.Recipient {
			return ErrNotRecipient
		}

		ms, err := e.registry.milestone(index)
		if err != nil {
			return err
		}

		if status := e.advance(tx); status != StatusFunded {
			return ErrCampaignNotFunded
		}

		if index != e.totals.pointer {
			return ErrNotCurrentMilestone
		}

		if ms.Status != MilestonePending {
			return ErrMilestoneNotPending
		}

		ms = tx.touchMilestone(index)
		ms.Status = MilestoneVoting
		ms.VotingDeadline = tx.now.Add(e.params.VotingPeriod)

		tx.log(&MilestoneSubmittedRecord{
			EscrowID:       e.id,
			Index:          index,
			Description:    ms.Description,
			VotingDeadline: ms.VotingDeadline,
		})

		return nil
	})
}

// Vote casts the vote of a contributor on a milestone, weighted by its contribution.
// The milestone is resolved right away if the outcome can no longer change.
func (e *Escrow) Vote(ctx context.Context, voter iotago.Ed25519Address, index uint16, approve bool) (Resolution, error) {

	resolution := ResolutionUndecided

	if err := e.execute(ctx, func(tx *txn) error {

		ms, err := e.registry.milestone(index)
		if err != nil {
			return err
		}

		if status := e.advance(tx); status != StatusFunded {
			return ErrCampaignNotFunded
		}

		if ms.Status != MilestoneVoting {
			return ErrMilestoneNotVoting
		}

		weight := e.ledger.weight(voter)
		if weight == 0 {
			return ErrNotContributor
		}

		if !ms.IsVotingOpen(tx.now) {
			return ErrVotingClosed
		}

		key := voteKey{index: index, voter: voter}
		if _, voted := e.votes[key]; voted {
			return ErrAlreadyVoted
		}

		ms = tx.touchMilestone(index)
		if approve {
			ms.VotesFor += weight
		} else {
			ms.VotesAgainst += weight
		}
		tx.addVote(key, &Vote{Approve: approve, Weight: weight})

		tx.log(&VoteCastRecord{
			EscrowID: e.id,
			Index:    index,
			Voter:    voter,
			Approve:  approve,
			Weight:   weight,
		})

		resolution = EarlyResolution(ms.VotesFor, ms.VotesAgainst, e.totals.totalRaised)
		e.resolve(tx, ms, resolution)

		return nil
	}); err != nil {
		return ResolutionUndecided, err
	}

	return resolution, nil
}

// FinalizeMilestone resolves a milestone after its voting period ended. Anyone may finalize.
func (e *Escrow) FinalizeMilestone(ctx context.Context, index uint16) (Resolution, error) {

	var resolution Resolution

	if err := e.execute(ctx, func(tx *txn) error {

		ms, err := e.registry.milestone(index)
		if err != nil {
			return err
		}

		if status := e.advance(tx); status != StatusFunded {
			return ErrCampaignNotFunded
		}

		if ms.Status != MilestoneVoting {
			return ErrMilestoneNotVoting
		}

		if ms.IsVotingOpen(tx.now) {
			return ErrVotingStillOpen
		}

		resolution = FinalResolution(ms.VotesFor, ms.VotesAgainst)
		e.resolve(tx, tx.touchMilestone(index), resolution)

		return nil
	}); err != nil {
		return ResolutionUndecided, err
	}

	return resolution, nil
}

// resolve applies the outcome of a vote to the milestone that is currently voted on.
func (e *Escrow) resolve(tx *txn, ms *Milestone, resolution Resolution) {

	switch resolution {
	case ResolutionApproved:
		t := tx.touchTotals()

		release := ms.Amount
		if balance := t.balance(); release > balance {
			release = balance
		}

		ms.Status = MilestoneApproved
		ms.Released = release
		t.totalReleased += release
		t.pointer++

		tx.log(&MilestoneApprovedRecord{EscrowID: e.id, Index: ms.Index, Released: release})

		if release > 0 {
			tx.log(&FundsReleasedRecord{EscrowID: e.id, Recipient: e.params.Recipient, Amount: release})
			tx.send(e.params.Recipient, release, TransferReasonRelease)
		}

		if int(t.pointer) >= e.registry.count() {
			tx.setStatus(StatusCompleted)
		}

	case ResolutionRejected:
		ms.Status = MilestoneRejected
		tx.log(&MilestoneRejectedRecord{EscrowID: e.id, Index: ms.Index})
	}
}

// VoteEmergency casts the emergency cancellation vote of a contributor.
// The campaign is cancelled once the emergency vote weight reaches the emergency threshold of the raised funds.
func (e *Escrow) VoteEmergency(ctx context.Context, voter iotago.Ed25519Address) (bool, error) {

	var cancelled bool

	if err := e.execute(ctx, func(tx *txn) error {

		if status := e.advance(tx); status != StatusFunded {
			return ErrCampaignNotFunded
		}

		weight := e.ledger.weight(voter)
		if weight == 0 {
			return ErrNotContributor
		}

		if _, voted := e.emergencyVotes[voter]; voted {
			return ErrAlreadyVoted
		}

		t := tx.touchTotals()
		t.emergencyWeight += weight
		tx.addEmergencyVote(voter, weight)

		tx.log(&EmergencyVoteCastRecord{
			EscrowID:    e.id,
			Voter:       voter,
			Weight:      weight,
			TotalWeight: t.emergencyWeight,
		})

		if EmergencyReached(t.emergencyWeight, t.totalRaised) {
			tx.setStatus(StatusCancelled)
			cancelled = true
		}

		return nil
	}); err != nil {
		return false, err
	}

	if cancelled {
		e.LogInfof("escrow %s: cancelled by emergency vote", e.id.ToHex())
	}

	return cancelled, nil
}
