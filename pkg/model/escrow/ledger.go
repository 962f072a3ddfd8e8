package escrow

import (
	iotago "github.com/iotaledger/iota.go/v3"
)

// Contributor is the ledger entry of a single contributor.
type Contributor struct {
	// Contributed is the cumulative accepted contribution. It never decreases.
	Contributed uint64
	// RefundClaimed is the cumulative amount already refunded. It never decreases.
	RefundClaimed uint64
}

// totals are the campaign wide counters.
type totals struct {
	status           Status
	totalRaised      uint64
	totalReleased    uint64
	totalRefunded    uint64
	contributorCount uint32
	pointer          uint16
	emergencyWeight  uint64
}

// balance is the amount still held by the escrow.
func (t *totals) balance() uint64 {
	return t.totalRaised - t.totalReleased - t.totalRefunded
}

// ledger tracks contributions and refunds per contributor.
type ledger struct {
	contributors map[iotago.Ed25519Address]*Contributor
}

func newLedger() *ledger {
	return &ledger{contributors: make(map[iotago.Ed25519Address]*Contributor)}
}

// contributor returns the ledger entry of the given address or nil.
func (l *ledger) contributor(address iotago.Ed25519Address) *Contributor {
	return l.contributors[address]
}

// weight is the vote weight of the given address.
func (l *ledger) weight(address iotago.Ed25519Address) uint64 {
	if c := l.contributors[address]; c != nil {
		return c.Contributed
	}
	return 0
}

func (l *ledger) clone() *ledger {
	cpy := &ledger{contributors: make(map[iotago.Ed25519Address]*Contributor, len(l.contributors))}
	for address, c := range l.contributors {
		entry := *c
		cpy.contributors[address] = &entry
	}
	return cpy
}

// acceptContribution splits an incoming amount into the accepted part and the excess over the hard cap.
func acceptContribution(totalRaised uint64, hardCap uint64, amount uint64) (accepted uint64, excess uint64) {
	room := hardCap - totalRaised
	if amount > room {
		return room, amount - room
	}
	return amount, 0
}
