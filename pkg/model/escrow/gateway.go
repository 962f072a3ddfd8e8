package escrow

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	iotago "github.com/iotaledger/iota.go/v3"
)

// TransferReason describes why funds leave the escrow.
type TransferReason byte

const (
	TransferReasonRelease TransferReason = iota
	TransferReasonRefund
	TransferReasonExcessReturn
)

func (r TransferReason) String() string {
	switch r {
	case TransferReasonRelease:
		return "release"
	case TransferReasonRefund:
		return "refund"
	case TransferReasonExcessReturn:
		return "excessReturn"
	default:
		return fmt.Sprintf("unknown(%d)", byte(r))
	}
}

// Transfer is an outbound payment of an escrow.
type Transfer struct {
	EscrowID EscrowID
	To       iotago.Ed25519Address
	Amount   uint64
	Reason   TransferReason
}

// Transferer delivers outbound payments.
// The receiving side may call back into the escrow before Transfer returns.
// Such calls must be made with the context passed to Transfer, otherwise they deadlock.
type Transferer interface {
	Transfer(ctx context.Context, transfer *Transfer) error
}

// TransfererFunc is a function that implements Transferer.
type TransfererFunc func(ctx context.Context, transfer *Transfer) error

func (f TransfererFunc) Transfer(ctx context.Context, transfer *Transfer) error {
	return f(ctx, transfer)
}

// transferContextKey marks a context that is passed to the Transferer of an escrow.
type transferContextKey struct {
	escrowID EscrowID
}

// inTransfer returns whether ctx belongs to a transfer of the given escrow.
func inTransfer(ctx context.Context, escrowID EscrowID) bool {
	marked, _ := ctx.Value(transferContextKey{escrowID: escrowID}).(bool)
	return marked
}

// gateway is the only way funds leave an escrow.
// Calls that originate from one of its transfers are refused by the escrow.
type gateway struct {
	escrowID   EscrowID
	transferer Transferer
}

func newGateway(escrowID EscrowID, transferer Transferer) *gateway {
	return &gateway{
		escrowID:   escrowID,
		transferer: transferer,
	}
}

func (g *gateway) send(ctx context.Context, transfer *Transfer) error {

	if inTransfer(ctx, g.escrowID) {
		return ErrReentrantCall
	}

	if err := g.transferer.Transfer(context.WithValue(ctx, transferContextKey{escrowID: g.escrowID}, true), transfer); err != nil {
		return errors.WithMessagef(ErrTransferFailed, "%s of %d to %s: %s", transfer.Reason, transfer.Amount, transfer.To.String(), err)
	}

	return nil
}
