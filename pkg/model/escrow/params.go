package escrow

import (
	"fmt"
	"time"

	"github.com/iotaledger/hive.go/marshalutil"
	iotago "github.com/iotaledger/iota.go/v3"
)

const (
	MilestoneDescriptionMaxLength = 500
	MaxMilestoneCount             = 64
)

// MilestoneSpec describes a single milestone of a campaign.
type MilestoneSpec struct {
	// Description is a human readable description of the deliverable.
	Description string
	// Amount is the amount released to the recipient once the milestone is approved.
	Amount uint64
	// Deadline is the deadline the recipient committed to. It is informational only.
	Deadline time.Time
}

// Params are the parameters of a campaign. They are fixed at creation.
type Params struct {
	// Recipient is the only address funds are released to.
	Recipient iotago.Ed25519Address
	// SoftCap is the minimum funding goal.
	SoftCap uint64
	// HardCap is the funding ceiling.
	HardCap uint64
	// FundingDeadline is the point in time contributions are no longer accepted.
	FundingDeadline time.Time
	// VotingPeriod is the duration of a milestone vote.
	VotingPeriod time.Duration
	// Milestones are the ordered milestones of the campaign.
	Milestones []*MilestoneSpec
}

// NewMilestoneSpecs builds the milestone specifications from parallel lists.
func NewMilestoneSpecs(descriptions []string, amounts []uint64, deadlines []time.Time) ([]*MilestoneSpec, error) {

	if len(descriptions) != len(amounts) || len(descriptions) != len(deadlines) {
		return nil, fmt.Errorf("%w: %d descriptions, %d amounts, %d deadlines", ErrMilestoneCountMismatch, len(descriptions), len(amounts), len(deadlines))
	}

	specs := make([]*MilestoneSpec, len(descriptions))
	for i := range descriptions {
		specs[i] = &MilestoneSpec{
			Description: descriptions[i],
			Amount:      amounts[i],
			Deadline:    deadlines[i],
		}
	}
	return specs, nil
}

// Validate checks the parameters of a campaign that is created at the given time.
func (p *Params) Validate(now time.Time) error {

	if p.Recipient == (iotago.Ed25519Address{}) {
		return ErrInvalidRecipient
	}

	if p.SoftCap == 0 || p.HardCap < p.SoftCap {
		return fmt.Errorf("%w: soft cap %d, hard cap %d", ErrInvalidCaps, p.SoftCap, p.HardCap)
	}

	if !p.FundingDeadline.After(now) {
		return fmt.Errorf("%w: %s", ErrInvalidFundingDeadline, p.FundingDeadline.Format(time.RFC3339))
	}

	if p.VotingPeriod <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidVotingPeriod, p.VotingPeriod)
	}

	if len(p.Milestones) == 0 {
		return ErrNoMilestones
	}

	if len(p.Milestones) > MaxMilestoneCount {
		return fmt.Errorf("%w: %d, max allowed %d", ErrTooManyMilestones, len(p.Milestones), MaxMilestoneCount)
	}

	var sum uint64
	for i, spec := range p.Milestones {
		if spec == nil {
			return fmt.Errorf("%w: milestone %d is missing", ErrInvalidMilestoneDescription, i)
		}

		if len(spec.Description) == 0 || len(spec.Description) > MilestoneDescriptionMaxLength {
			return fmt.Errorf("%w: milestone %d, length %d, max allowed %d", ErrInvalidMilestoneDescription, i, len(spec.Description), MilestoneDescriptionMaxLength)
		}

		if spec.Amount == 0 {
			return fmt.Errorf("%w: milestone %d", ErrInvalidMilestoneAmount, i)
		}

		if spec.Deadline.Before(p.FundingDeadline) {
			return fmt.Errorf("%w: milestone %d", ErrInvalidMilestoneDeadline, i)
		}

		if sum+spec.Amount < sum {
			return fmt.Errorf("%w: overflow at milestone %d", ErrMilestoneSumMismatch, i)
		}
		sum += spec.Amount
	}

	if sum != p.SoftCap {
		return fmt.Errorf("%w: sum %d, soft cap %d", ErrMilestoneSumMismatch, sum, p.SoftCap)
	}

	return nil
}

func (p *Params) marshal(m *marshalutil.MarshalUtil) {
	m.WriteBytes(p.Recipient[:])
	m.WriteUint64(p.SoftCap)
	m.WriteUint64(p.HardCap)
	m.WriteInt64(unixNano(p.FundingDeadline))
	m.WriteInt64(int64(p.VotingPeriod))
	m.WriteUint16(uint16(len(p.Milestones)))
	for _, spec := range p.Milestones {
		m.WriteUint16(uint16(len(spec.Description)))
		m.WriteBytes([]byte(spec.Description))
		m.WriteUint64(spec.Amount)
		m.WriteInt64(unixNano(spec.Deadline))
	}
}

func (p *Params) unmarshal(m *marshalutil.MarshalUtil) error {

	recipient, err := m.ReadBytes(iotago.Ed25519AddressBytesLength)
	if err != nil {
		return err
	}
	copy(p.Recipient[:], recipient)

	if p.SoftCap, err = m.ReadUint64(); err != nil {
		return err
	}
	if p.HardCap, err = m.ReadUint64(); err != nil {
		return err
	}

	fundingDeadline, err := m.ReadInt64()
	if err != nil {
		return err
	}
	p.FundingDeadline = timeFromUnixNano(fundingDeadline)

	votingPeriod, err := m.ReadInt64()
	if err != nil {
		return err
	}
	p.VotingPeriod = time.Duration(votingPeriod)

	count, err := m.ReadUint16()
	if err != nil {
		return err
	}
	if count == 0 || count > MaxMilestoneCount {
		return fmt.Errorf("%w: milestone count %d", ErrSerializationInvalidRecord, count)
	}

	p.Milestones = make([]*MilestoneSpec, count)
	for i := range p.Milestones {
		descriptionLength, err := m.ReadUint16()
		if err != nil {
			return err
		}
		if descriptionLength > MilestoneDescriptionMaxLength {
			return fmt.Errorf("%w: milestone %d description", ErrSerializationStringTooLong, i)
		}

		description, err := m.ReadBytes(int(descriptionLength))
		if err != nil {
			return err
		}

		amount, err := m.ReadUint64()
		if err != nil {
			return err
		}

		deadline, err := m.ReadInt64()
		if err != nil {
			return err
		}

		p.Milestones[i] = &MilestoneSpec{
			Description: string(description),
			Amount:      amount,
			Deadline:    timeFromUnixNano(deadline),
		}
	}

	return nil
}
