package mqtt

// Amounts are encoded as base-10 strings and times as unix seconds, like in the REST API.

type escrowCreatedPayload struct {
	EscrowID  string `json:"escrowId"`
	Creator   string `json:"creator"`
	Recipient string `json:"recipient"`
	SoftCap   string `json:"softCap"`
	HardCap   string `json:"hardCap"`
}

type contributionPayload struct {
	EscrowID    string `json:"escrowId"`
	Contributor string `json:"contributor"`
	Amount      string `json:"amount"`
	// Only set for accepted contributions.
	TotalRaised string `json:"totalRaised,omitempty"`
}

type milestoneSubmittedPayload struct {
	EscrowID       string `json:"escrowId"`
	Index          uint16 `json:"index"`
	Description    string `json:"description"`
	VotingDeadline int64  `json:"votingDeadline"`
}

type voteCastPayload struct {
	EscrowID string `json:"escrowId"`
	Index    uint16 `json:"index"`
	Voter    string `json:"voter"`
	Approve  bool   `json:"approve"`
	Weight   string `json:"weight"`
}

type milestoneResolvedPayload struct {
	EscrowID string `json:"escrowId"`
	Index    uint16 `json:"index"`
	Approved bool   `json:"approved"`
	Released string `json:"released"`
}

type fundsReleasedPayload struct {
	EscrowID  string `json:"escrowId"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type emergencyVotePayload struct {
	EscrowID    string `json:"escrowId"`
	Voter       string `json:"voter"`
	Weight      string `json:"weight"`
	TotalWeight string `json:"totalWeight"`
}

type statusChangedPayload struct {
	EscrowID string `json:"escrowId"`
	From     string `json:"from"`
	To       string `json:"to"`
}
