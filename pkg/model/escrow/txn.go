package escrow

import (
	"time"

	iotago "github.com/iotaledger/iota.go/v3"
)

// txn collects the pre-images of all records an operation touches,
// the records it wants to log and the transfer it wants to perform.
// Nothing leaves the escrow before the touched records were persisted.
type txn struct {
	escrow *Escrow
	now    time.Time

	totals         *totals
	contributors   map[iotago.Ed25519Address]*Contributor
	milestones     map[uint16]*Milestone
	votes          map[voteKey]struct{}
	emergencyVotes map[iotago.Ed25519Address]struct{}

	records  []LogRecord
	transfer *Transfer
}

func newTxn(e *Escrow, now time.Time) *txn {
	return &txn{
		escrow:         e,
		now:            now,
		contributors:   make(map[iotago.Ed25519Address]*Contributor),
		milestones:     make(map[uint16]*Milestone),
		votes:          make(map[voteKey]struct{}),
		emergencyVotes: make(map[iotago.Ed25519Address]struct{}),
	}
}

func (tx *txn) touchTotals() *totals {
	if tx.totals == nil {
		pre := tx.escrow.totals
		tx.totals = &pre
	}
	return &tx.escrow.totals
}

// touchContributor returns the mutable ledger entry of the address and creates it if needed.
func (tx *txn) touchContributor(address iotago.Ed25519Address) *Contributor {
	c := tx.escrow.ledger.contributor(address)
	if _, touched := tx.contributors[address]; !touched {
		if c != nil {
			pre := *c
			tx.contributors[address] = &pre
		} else {
			tx.contributors[address] = nil
		}
	}
	if c == nil {
		c = &Contributor{}
		tx.escrow.ledger.contributors[address] = c
	}
	return c
}

func (tx *txn) touchMilestone(index uint16) *Milestone {
	ms := tx.escrow.registry.milestones[index]
	if _, touched := tx.milestones[index]; !touched {
		tx.milestones[index] = ms.clone()
	}
	return ms
}

func (tx *txn) addVote(key voteKey, vote *Vote) {
	tx.votes[key] = struct{}{}
	tx.escrow.votes[key] = vote
}

func (tx *txn) addEmergencyVote(voter iotago.Ed25519Address, weight uint64) {
	tx.emergencyVotes[voter] = struct{}{}
	tx.escrow.emergencyVotes[voter] = weight
}

// setStatus changes the lifecycle status and logs the change.
func (tx *txn) setStatus(status Status) {
	t := tx.touchTotals()
	if t.status == status {
		return
	}
	tx.log(&StatusChangedRecord{EscrowID: tx.escrow.id, From: t.status, To: status})
	t.status = status
}

func (tx *txn) log(record LogRecord) {
	tx.records = append(tx.records, record)
}

func (tx *txn) send(to iotago.Ed25519Address, amount uint64, reason TransferReason) {
	if tx.transfer != nil {
		panic("only a single transfer per operation is allowed")
	}
	tx.transfer = &Transfer{
		EscrowID: tx.escrow.id,
		To:       to,
		Amount:   amount,
		Reason:   reason,
	}
}

func (tx *txn) hasChanges() bool {
	return tx.totals != nil || len(tx.contributors) > 0 || len(tx.milestones) > 0 || len(tx.votes) > 0 || len(tx.emergencyVotes) > 0
}

// rollback restores every touched record to its pre-image.
func (tx *txn) rollback() {
	e := tx.escrow

	if tx.totals != nil {
		e.totals = *tx.totals
	}

	for address, pre := range tx.contributors {
		if pre == nil {
			delete(e.ledger.contributors, address)
			continue
		}
		e.ledger.contributors[address] = pre
	}

	for index, pre := range tx.milestones {
		e.registry.milestones[index] = pre
	}

	for key := range tx.votes {
		delete(e.votes, key)
	}

	for voter := range tx.emergencyVotes {
		delete(e.emergencyVotes, voter)
	}

	tx.records = nil
	tx.transfer = nil
}
