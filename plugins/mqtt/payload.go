package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gohornet/escrow/pkg/model/escrow"
	iotago "github.com/iotaledger/iota.go/v3"
)

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

// recordPayload serializes a log record to the JSON payload of its topics.
func recordPayload(record escrow.LogRecord, hrp iotago.NetworkPrefix) ([]byte, error) {

	var payload interface{}

	switch r := record.(type) {
	case *escrow.EscrowCreatedRecord:
		payload = &escrowCreatedPayload{
			EscrowID:  r.EscrowID.ToHex(),
			Creator:   r.Creator.Bech32(hrp),
			Recipient: r.Recipient.Bech32(hrp),
			SoftCap:   formatAmount(r.SoftCap),
			HardCap:   formatAmount(r.HardCap),
		}

	case *escrow.ContributionMadeRecord:
		payload = &contributionPayload{
			EscrowID:    r.EscrowID.ToHex(),
			Contributor: r.Contributor.Bech32(hrp),
			Amount:      formatAmount(r.Amount),
			TotalRaised: formatAmount(r.TotalRaised),
		}

	case *escrow.ExcessReturnedRecord:
		payload = &contributionPayload{
			EscrowID:    r.EscrowID.ToHex(),
			Contributor: r.Contributor.Bech32(hrp),
			Amount:      formatAmount(r.Amount),
		}

	case *escrow.RefundClaimedRecord:
		payload = &contributionPayload{
			EscrowID:    r.EscrowID.ToHex(),
			Contributor: r.Contributor.Bech32(hrp),
			Amount:      formatAmount(r.Amount),
		}

	case *escrow.MilestoneSubmittedRecord:
		payload = &milestoneSubmittedPayload{
			EscrowID:       r.EscrowID.ToHex(),
			Index:          r.Index,
			Description:    r.Description,
			VotingDeadline: r.VotingDeadline.Unix(),
		}

	case *escrow.VoteCastRecord:
		payload = &voteCastPayload{
			EscrowID: r.EscrowID.ToHex(),
			Index:    r.Index,
			Voter:    r.Voter.Bech32(hrp),
			Approve:  r.Approve,
			Weight:   formatAmount(r.Weight),
		}

	case *escrow.MilestoneApprovedRecord:
		payload = &milestoneResolvedPayload{
			EscrowID: r.EscrowID.ToHex(),
			Index:    r.Index,
			Approved: true,
			Released: formatAmount(r.Released),
		}

	case *escrow.MilestoneRejectedRecord:
		payload = &milestoneResolvedPayload{
			EscrowID: r.EscrowID.ToHex(),
			Index:    r.Index,
			Released: formatAmount(0),
		}

	case *escrow.FundsReleasedRecord:
		payload = &fundsReleasedPayload{
			EscrowID:  r.EscrowID.ToHex(),
			Recipient: r.Recipient.Bech32(hrp),
			Amount:    formatAmount(r.Amount),
		}

	case *escrow.EmergencyVoteCastRecord:
		payload = &emergencyVotePayload{
			EscrowID:    r.EscrowID.ToHex(),
			Voter:       r.Voter.Bech32(hrp),
			Weight:      formatAmount(r.Weight),
			TotalWeight: formatAmount(r.TotalWeight),
		}

	case *escrow.StatusChangedRecord:
		payload = &statusChangedPayload{
			EscrowID: r.EscrowID.ToHex(),
			From:     r.From.String(),
			To:       r.To.String(),
		}

	default:
		return nil, fmt.Errorf("unknown record type: %T", record)
	}

	return json.Marshal(payload)
}
