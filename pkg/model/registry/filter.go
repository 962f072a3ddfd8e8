package registry

import (
	iotago "github.com/iotaledger/iota.go/v3"
)

type FilterOptions struct {
	creator       *iotago.Ed25519Address
	recipient     *iotago.Ed25519Address
	afterSequence uint64
	maxResults    int
}

type FilterOption func(*FilterOptions)

func FilterCreator(address iotago.Ed25519Address) FilterOption {
	return func(args *FilterOptions) {
		args.creator = &address
	}
}

func FilterRecipient(address iotago.Ed25519Address) FilterOption {
	return func(args *FilterOptions) {
		args.recipient = &address
	}
}

// FilterAfterSequence only returns campaigns that were indexed after the given sequence number.
func FilterAfterSequence(sequence uint64) FilterOption {
	return func(args *FilterOptions) {
		args.afterSequence = sequence
	}
}

func FilterMaxResults(maxResults int) FilterOption {
	return func(args *FilterOptions) {
		args.maxResults = maxResults
	}
}

func filterOptions(optionalOptions []FilterOption) *FilterOptions {
	result := &FilterOptions{}

	for _, optionalOption := range optionalOptions {
		optionalOption(result)
	}

	return result
}
