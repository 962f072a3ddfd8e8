package registry

import (
	"time"

	"github.com/gohornet/escrow/pkg/model/escrow"
	iotago "github.com/iotaledger/iota.go/v3"
)

type escrowIDBytes []byte
type addressBytes []byte

// campaign is a row of the append-only campaign index.
type campaign struct {
	Sequence  uint64        `gorm:"primaryKey;autoIncrement"`
	EscrowID  escrowIDBytes `gorm:"unique;not null"`
	Creator   addressBytes  `gorm:"not null;index:campaigns_creator"`
	Recipient addressBytes  `gorm:"not null;index:campaigns_recipient"`
	CreatedAt time.Time     `gorm:"not null"`
}

// Campaign is an entry of the campaign index.
type Campaign struct {
	Sequence  uint64
	EscrowID  escrow.EscrowID
	Creator   iotago.Ed25519Address
	Recipient iotago.Ed25519Address
	CreatedAt time.Time
}

func (c *campaign) toCampaign() *Campaign {
	result := &Campaign{
		Sequence:  c.Sequence,
		CreatedAt: c.CreatedAt,
	}
	copy(result.EscrowID[:], c.EscrowID)
	copy(result.Creator[:], c.Creator)
	copy(result.Recipient[:], c.Recipient)
	return result
}

// CreateRequest holds the parameters of a new campaign as parallel milestone lists.
type CreateRequest struct {
	Recipient       iotago.Ed25519Address
	SoftCap         uint64
	HardCap         uint64
	FundingDeadline time.Time
	VotingPeriod    time.Duration

	Descriptions []string
	Amounts      []uint64
	Deadlines    []time.Time
}
