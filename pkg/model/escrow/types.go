package escrow

import (
	"encoding/hex"
	"fmt"
	"time"

	// import implementation
	"golang.org/x/crypto/blake2b"

	iotago "github.com/iotaledger/iota.go/v3"
)

const (
	// EscrowIDLength defines the length of an escrow ID.
	EscrowIDLength = blake2b.Size256
)

// EscrowID is the ID of an escrow instance.
type EscrowID [EscrowIDLength]byte

var (
	NullEscrowID = EscrowID{}
)

// ToHex converts the EscrowID to its hex representation.
func (id EscrowID) ToHex() string {
	return hex.EncodeToString(id[:])
}

func (id EscrowID) String() string {
	return id.ToHex()
}

// EscrowIDFromHex creates an EscrowID from a hex string representation.
func EscrowIDFromHex(hexString string) (EscrowID, error) {

	b, err := hex.DecodeString(hexString)
	if err != nil {
		return NullEscrowID, err
	}

	if len(b) != EscrowIDLength {
		return NullEscrowID, fmt.Errorf("unknown escrowID length (%d)", len(b))
	}

	id := EscrowID{}
	copy(id[:], b)
	return id, nil
}

// Status is the lifecycle status of a campaign.
type Status byte

const (
	// StatusFunding accepts contributions until the soft cap is met or the funding deadline passes.
	StatusFunding Status = iota
	// StatusFunded means the soft cap was met and milestones are being released.
	StatusFunded
	// StatusFailed means the funding deadline passed below the soft cap.
	StatusFailed
	// StatusCompleted means every milestone was approved.
	StatusCompleted
	// StatusCancelled means the contributors voted for an emergency cancellation.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusFunding:
		return "funding"
	case StatusFunded:
		return "funded"
	case StatusFailed:
		return "failed"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("unknown(%d)", byte(s))
	}
}

// MilestoneStatus is the status of a single milestone.
type MilestoneStatus byte

const (
	MilestonePending MilestoneStatus = iota
	MilestoneVoting
	MilestoneApproved
	MilestoneRejected
)

func (s MilestoneStatus) String() string {
	switch s {
	case MilestonePending:
		return "pending"
	case MilestoneVoting:
		return "voting"
	case MilestoneApproved:
		return "approved"
	case MilestoneRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", byte(s))
	}
}

// ParseBech32Address parses an Ed25519 bech32 address and checks its network prefix.
func ParseBech32Address(hrp iotago.NetworkPrefix, bech32Address string) (iotago.Ed25519Address, error) {

	prefix, address, err := iotago.ParseBech32(bech32Address)
	if err != nil {
		return iotago.Ed25519Address{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if prefix != hrp {
		return iotago.Ed25519Address{}, fmt.Errorf("%w: address does not start with \"%s\"", ErrInvalidAddress, hrp)
	}

	ed25519Address, ok := address.(*iotago.Ed25519Address)
	if !ok {
		return iotago.Ed25519Address{}, fmt.Errorf("%w: only ed25519 addresses are supported", ErrInvalidAddress)
	}

	return *ed25519Address, nil
}

func blake2bSum(data []byte) EscrowID {
	return EscrowID(blake2b.Sum256(data))
}

// unixNano encodes a time, the zero time is encoded as 0.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func timeFromUnixNano(nsec int64) time.Time {
	if nsec == 0 {
		return time.Time{}
	}
	return time.Unix(0, nsec)
}
