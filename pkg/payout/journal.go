package payout

import (
	"context"

	"github.com/iotaledger/hive.go/syncutils"
	iotago "github.com/iotaledger/iota.go/v3"

	"github.com/gohornet/escrow/pkg/model/escrow"
)

// Journal is an in-memory Transferer that books every transfer.
type Journal struct {
	syncutils.RWMutex

	transfers []*escrow.Transfer
	received  map[iotago.Ed25519Address]uint64
}

// NewJournal creates a new Journal.
func NewJournal() *Journal {
	return &Journal{
		received: make(map[iotago.Ed25519Address]uint64),
	}
}

func (j *Journal) Transfer(_ context.Context, transfer *escrow.Transfer) error {
	j.Lock()
	defer j.Unlock()

	booked := *transfer
	j.transfers = append(j.transfers, &booked)
	j.received[transfer.To] += transfer.Amount

	return nil
}

// Transfers returns all booked transfers in order.
func (j *Journal) Transfers() []*escrow.Transfer {
	j.RLock()
	defer j.RUnlock()

	result := make([]*escrow.Transfer, len(j.transfers))
	copy(result, j.transfers)
	return result
}

// Received returns the sum of all transfers to the given address.
func (j *Journal) Received(address iotago.Ed25519Address) uint64 {
	j.RLock()
	defer j.RUnlock()

	return j.received[address]
}

// Total returns the sum of all booked transfers of the given escrow.
func (j *Journal) Total(escrowID escrow.EscrowID) uint64 {
	j.RLock()
	defer j.RUnlock()

	var total uint64
	for _, transfer := range j.transfers {
		if transfer.EscrowID == escrowID {
			total += transfer.Amount
		}
	}
	return total
}
