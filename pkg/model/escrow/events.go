package escrow

import (
	"time"

	"github.com/iotaledger/hive.go/events"
	iotago "github.com/iotaledger/iota.go/v3"
)

// LogRecord is an observational record of something that happened to an escrow.
// Records of one escrow are triggered in call order and only for successful calls.
type LogRecord interface {
	// Escrow returns the ID of the escrow the record belongs to.
	Escrow() EscrowID
	// RecordType returns the name of the record.
	RecordType() string
}

func LogRecordCaller(handler interface{}, params ...interface{}) {
	handler.(func(LogRecord))(params[0].(LogRecord))
}

// Events are the events issued by the escrow manager.
type Events struct {
	// Fired when an escrow was created.
	EscrowCreated *events.Event
	// Fired when a contribution was accepted.
	ContributionMade *events.Event
	// Fired when the part of a contribution over the hard cap was sent back.
	ExcessReturned *events.Event
	// Fired when a refund was paid.
	RefundClaimed *events.Event
	// Fired when the recipient submitted a milestone for voting.
	MilestoneSubmitted *events.Event
	// Fired when a contributor voted on a milestone.
	VoteCast *events.Event
	// Fired when a milestone was approved.
	MilestoneApproved *events.Event
	// Fired when a milestone was rejected.
	MilestoneRejected *events.Event
	// Fired when funds were released to the recipient.
	FundsReleased *events.Event
	// Fired when a contributor voted for an emergency cancellation.
	EmergencyVoteCast *events.Event
	// Fired when the lifecycle status of an escrow changed.
	StatusChanged *events.Event
	// Fired when the stored state of an escrow could not be restored after a failed transfer.
	CriticalError *events.Event
}

func newEvents() *Events {
	return &Events{
		EscrowCreated:      events.NewEvent(LogRecordCaller),
		ContributionMade:   events.NewEvent(LogRecordCaller),
		ExcessReturned:     events.NewEvent(LogRecordCaller),
		RefundClaimed:      events.NewEvent(LogRecordCaller),
		MilestoneSubmitted: events.NewEvent(LogRecordCaller),
		VoteCast:           events.NewEvent(LogRecordCaller),
		MilestoneApproved:  events.NewEvent(LogRecordCaller),
		MilestoneRejected:  events.NewEvent(LogRecordCaller),
		FundsReleased:      events.NewEvent(LogRecordCaller),
		EmergencyVoteCast:  events.NewEvent(LogRecordCaller),
		StatusChanged:      events.NewEvent(LogRecordCaller),
		CriticalError:      events.NewEvent(events.ErrorCaller),
	}
}

// All returns every log record event, so a single closure can observe all records.
func (e *Events) All() []*events.Event {
	return []*events.Event{
		e.EscrowCreated,
		e.ContributionMade,
		e.ExcessReturned,
		e.RefundClaimed,
		e.MilestoneSubmitted,
		e.VoteCast,
		e.MilestoneApproved,
		e.MilestoneRejected,
		e.FundsReleased,
		e.EmergencyVoteCast,
		e.StatusChanged,
	}
}

// trigger fires the event matching the record.
func (e *Events) trigger(record LogRecord) {
	switch record.(type) {
	case *EscrowCreatedRecord:
		e.EscrowCreated.Trigger(record)
	case *ContributionMadeRecord:
		e.ContributionMade.Trigger(record)
	case *ExcessReturnedRecord:
		e.ExcessReturned.Trigger(record)
	case *RefundClaimedRecord:
		e.RefundClaimed.Trigger(record)
	case *MilestoneSubmittedRecord:
		e.MilestoneSubmitted.Trigger(record)
	case *VoteCastRecord:
		e.VoteCast.Trigger(record)
	case *MilestoneApprovedRecord:
		e.MilestoneApproved.Trigger(record)
	case *MilestoneRejectedRecord:
		e.MilestoneRejected.Trigger(record)
	case *FundsReleasedRecord:
		e.FundsReleased.Trigger(record)
	case *EmergencyVoteCastRecord:
		e.EmergencyVoteCast.Trigger(record)
	case *StatusChangedRecord:
		e.StatusChanged.Trigger(record)
	}
}

type EscrowCreatedRecord struct {
	EscrowID  EscrowID
	Creator   iotago.Ed25519Address
	Recipient iotago.Ed25519Address
	SoftCap   uint64
	HardCap   uint64
}

func (r *EscrowCreatedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *EscrowCreatedRecord) RecordType() string { return "escrowCreated" }

type ContributionMadeRecord struct {
	EscrowID    EscrowID
	Contributor iotago.Ed25519Address
	Amount      uint64
	TotalRaised uint64
}

func (r *ContributionMadeRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *ContributionMadeRecord) RecordType() string { return "contributionMade" }

type ExcessReturnedRecord struct {
	EscrowID    EscrowID
	Contributor iotago.Ed25519Address
	Amount      uint64
}

func (r *ExcessReturnedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *ExcessReturnedRecord) RecordType() string { return "excessReturned" }

type RefundClaimedRecord struct {
	EscrowID    EscrowID
	Contributor iotago.Ed25519Address
	Amount      uint64
}

func (r *RefundClaimedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *RefundClaimedRecord) RecordType() string { return "refundClaimed" }

type MilestoneSubmittedRecord struct {
	EscrowID       EscrowID
	Index          uint16
	Description    string
	VotingDeadline time.Time
}

func (r *MilestoneSubmittedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *MilestoneSubmittedRecord) RecordType() string { return "milestoneSubmitted" }

type VoteCastRecord struct {
	EscrowID EscrowID
	Index    uint16
	Voter    iotago.Ed25519Address
	Approve  bool
	Weight   uint64
}

func (r *VoteCastRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *VoteCastRecord) RecordType() string { return "voteCast" }

type MilestoneApprovedRecord struct {
	EscrowID EscrowID
	Index    uint16
	Released uint64
}

func (r *MilestoneApprovedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *MilestoneApprovedRecord) RecordType() string { return "milestoneApproved" }

type MilestoneRejectedRecord struct {
	EscrowID EscrowID
	Index    uint16
}

func (r *MilestoneRejectedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *MilestoneRejectedRecord) RecordType() string { return "milestoneRejected" }

type FundsReleasedRecord struct {
	EscrowID  EscrowID
	Recipient iotago.Ed25519Address
	Amount    uint64
}

func (r *FundsReleasedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *FundsReleasedRecord) RecordType() string { return "fundsReleased" }

type EmergencyVoteCastRecord struct {
	EscrowID    EscrowID
	Voter       iotago.Ed25519Address
	Weight      uint64
	TotalWeight uint64
}

func (r *EmergencyVoteCastRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *EmergencyVoteCastRecord) RecordType() string { return "emergencyVoteCast" }

type StatusChangedRecord struct {
	EscrowID EscrowID
	From     Status
	To       Status
}

func (r *StatusChangedRecord) Escrow() EscrowID   { return r.EscrowID }
func (r *StatusChangedRecord) RecordType() string { return "statusChanged" }
