package escrow

const (
	// Holds the escrow headers (creator, creation time and parameters)
	EscrowStoreKeyPrefixEscrows byte = 0

	// Holds the campaign wide counters
	EscrowStoreKeyPrefixTotals byte = 1

	// Ledger
	EscrowStoreKeyPrefixContributors byte = 2

	// Milestones and voting
	EscrowStoreKeyPrefixMilestones     byte = 3
	EscrowStoreKeyPrefixVotes          byte = 4
	EscrowStoreKeyPrefixEmergencyVotes byte = 5
)
