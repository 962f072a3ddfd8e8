package escrowapi

import (
	"github.com/gohornet/escrow/pkg/model/escrow"
	iotago "github.com/iotaledger/iota.go/v3"
)

// Amounts are encoded as base-10 strings and times as unix seconds.

// tokenRequest defines the request for a JWT.
// Either publicKey and signature or, if enabled, only the address must be given.
type tokenRequest struct {
	// The hex encoded Ed25519 public key.
	PublicKey string `json:"publicKey,omitempty"`
	// The hex encoded signature of the auth message.
	Signature string `json:"signature,omitempty"`
	// The unix timestamp that is part of the signed auth message.
	Timestamp int64 `json:"timestamp,omitempty"`
	// The bech32 address, only used for insecure address tokens.
	Address string `json:"address,omitempty"`
}

// tokenResponse defines the response of a POST auth/token REST API call.
type tokenResponse struct {
	// The JWT.
	Token string `json:"token"`
	// The bech32 address the token was issued for.
	Address string `json:"address"`
}

// createCampaignRequest defines the request of a POST campaigns REST API call.
type createCampaignRequest struct {
	// The bech32 address of the recipient.
	Recipient string `json:"recipient"`
	// The minimum amount that must be raised.
	SoftCap string `json:"softCap"`
	// The maximum amount that can be raised.
	HardCap string `json:"hardCap"`
	// The unix timestamp of the funding deadline.
	FundingDeadline int64 `json:"fundingDeadline"`
	// The length of a voting window in seconds.
	VotingPeriod int64 `json:"votingPeriod"`
	// The milestones, the amounts must add up to the soft cap.
	Milestones []*createMilestoneRequest `json:"milestones"`
}

type createMilestoneRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Deadline    int64  `json:"deadline"`
}

// createCampaignResponse defines the response of a POST campaigns REST API call.
type createCampaignResponse struct {
	// The hex encoded escrow ID.
	EscrowID string `json:"escrowId"`
}

// campaignEntry is an entry of the campaign listing.
type campaignEntry struct {
	Sequence  uint64 `json:"sequence"`
	EscrowID  string `json:"escrowId"`
	Creator   string `json:"creator"`
	Recipient string `json:"recipient"`
	CreatedAt int64  `json:"createdAt"`
}

// campaignsResponse defines the response of a GET campaigns REST API call.
type campaignsResponse struct {
	Campaigns []*campaignEntry `json:"campaigns"`
	// The cursor to fetch the next page, empty if there are no more results.
	Cursor string `json:"cursor,omitempty"`
}

type milestoneResponse struct {
	Index          uint16 `json:"index"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	Deadline       int64  `json:"deadline"`
	Status         string `json:"status"`
	VotesFor       string `json:"votesFor"`
	VotesAgainst   string `json:"votesAgainst"`
	VotingDeadline int64  `json:"votingDeadline,omitempty"`
	VotingOpen     bool   `json:"votingOpen"`
	Released       string `json:"released"`
}

// campaignResponse defines the response of a GET campaigns/{escrowID} REST API call.
type campaignResponse struct {
	EscrowID         string               `json:"escrowId"`
	Creator          string               `json:"creator"`
	Recipient        string               `json:"recipient"`
	CreatedAt        int64                `json:"createdAt"`
	Status           string               `json:"status"`
	SoftCap          string               `json:"softCap"`
	HardCap          string               `json:"hardCap"`
	FundingDeadline  int64                `json:"fundingDeadline"`
	VotingPeriod     int64                `json:"votingPeriod"`
	TotalRaised      string               `json:"totalRaised"`
	TotalReleased    string               `json:"totalReleased"`
	TotalRefunded    string               `json:"totalRefunded"`
	Balance          string               `json:"balance"`
	ContributorCount uint32               `json:"contributorCount"`
	CurrentMilestone uint16               `json:"currentMilestone"`
	EmergencyWeight  string               `json:"emergencyWeight"`
	Milestones       []*milestoneResponse `json:"milestones"`
}

// contributorResponse defines the response of a GET campaigns/{escrowID}/contributors/{address} REST API call.
type contributorResponse struct {
	Address           string   `json:"address"`
	Contributed       string   `json:"contributed"`
	RefundClaimed     string   `json:"refundClaimed"`
	Refundable        string   `json:"refundable"`
	VotedEmergency    bool     `json:"votedEmergency"`
	VotedOnMilestones []uint16 `json:"votedOnMilestones"`
}

// contributionRequest defines the request of a POST campaigns/{escrowID}/contributions REST API call.
type contributionRequest struct {
	Amount string `json:"amount"`
}

// contributionResponse defines the response of a POST campaigns/{escrowID}/contributions REST API call.
type contributionResponse struct {
	Accepted    string `json:"accepted"`
	Returned    string `json:"returned"`
	TotalRaised string `json:"totalRaised"`
	Status      string `json:"status"`
}

// refundResponse defines the response of a POST campaigns/{escrowID}/refunds REST API call.
type refundResponse struct {
	Amount string `json:"amount"`
}

// voteRequest defines the request of a POST campaigns/{escrowID}/milestones/{index}/votes REST API call.
type voteRequest struct {
	Approve *bool `json:"approve"`
}

// resolutionResponse defines the response of the vote and finalize REST API calls.
type resolutionResponse struct {
	Resolution string `json:"resolution"`
}

// emergencyResponse defines the response of a POST campaigns/{escrowID}/emergency REST API call.
type emergencyResponse struct {
	Cancelled bool `json:"cancelled"`
}

func newMilestoneResponse(ms *escrow.Milestone, votingOpen bool) *milestoneResponse {
	resp := &milestoneResponse{
		Index:        ms.Index,
		Description:  ms.Description,
		Amount:       formatAmount(ms.Amount),
		Deadline:     ms.Deadline.Unix(),
		Status:       ms.Status.String(),
		VotesFor:     formatAmount(ms.VotesFor),
		VotesAgainst: formatAmount(ms.VotesAgainst),
		VotingOpen:   votingOpen,
		Released:     formatAmount(ms.Released),
	}
	if !ms.VotingDeadline.IsZero() {
		resp.VotingDeadline = ms.VotingDeadline.Unix()
	}
	return resp
}

func bech32(address iotago.Ed25519Address) string {
	return address.Bech32(deps.EscrowManager.Bech32HRP())
}
