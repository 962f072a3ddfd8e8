package escrow

import (
	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/model/storage"
)

// ErrorKind classifies the errors returned by escrow operations.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindValidation marks invalid amounts, addresses or campaign parameters.
	KindValidation
	// KindState marks operations attempted in the wrong lifecycle or milestone status.
	KindState
	// KindAuthorization marks callers that are not allowed to perform the operation.
	KindAuthorization
	// KindDuplicate marks actions that may only happen once.
	KindDuplicate
	// KindTransfer marks outbound payments that could not be delivered.
	KindTransfer
	// KindNotFound marks unknown escrow instances.
	KindNotFound
	// KindStorage marks failures of the underlying database.
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindAuthorization:
		return "authorization"
	case KindDuplicate:
		return "duplicate"
	case KindTransfer:
		return "transfer"
	case KindNotFound:
		return "not found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

var (
	// validation
	ErrInvalidAmount               = errors.New("amount must be greater than zero")
	ErrInvalidAddress              = errors.New("invalid address")
	ErrInvalidRecipient            = errors.New("recipient must be set")
	ErrInvalidCaps                 = errors.New("soft cap must be greater than zero and not exceed the hard cap")
	ErrInvalidFundingDeadline      = errors.New("funding deadline must be in the future")
	ErrInvalidVotingPeriod         = errors.New("voting period must be greater than zero")
	ErrNoMilestones                = errors.New("at least one milestone is required")
	ErrTooManyMilestones           = errors.New("too many milestones")
	ErrMilestoneCountMismatch      = errors.New("milestone descriptions, amounts and deadlines differ in count")
	ErrInvalidMilestoneAmount      = errors.New("milestone amount must be greater than zero")
	ErrInvalidMilestoneDescription = errors.New("invalid milestone description")
	ErrInvalidMilestoneDeadline    = errors.New("milestone deadline must not be before the funding deadline")
	ErrMilestoneSumMismatch        = errors.New("sum of milestone amounts must equal the soft cap")
	ErrUnknownMilestone            = errors.New("milestone does not exist")
	ErrSerializationInvalidRecord  = errors.New("invalid escrow record")
	ErrSerializationStringTooLong  = errors.New("string too long")
	ErrMissingTransferer           = errors.New("no transferer given")

	// state
	ErrFundingDeadlinePassed = errors.New("funding deadline passed")
	ErrCampaignEnded         = errors.New("campaign no longer accepts contributions")
	ErrHardCapReached        = errors.New("hard cap already reached")
	ErrCampaignNotFunded     = errors.New("campaign is not funded")
	ErrNotCurrentMilestone   = errors.New("milestone is not the current milestone")
	ErrMilestoneNotPending   = errors.New("milestone is not pending")
	ErrMilestoneNotVoting    = errors.New("milestone is not open for voting")
	ErrVotingClosed          = errors.New("voting period has ended")
	ErrVotingStillOpen       = errors.New("voting period has not ended yet")
	ErrNothingToRefund       = errors.New("no refund available")
	ErrReentrantCall         = errors.New("operation attempted while a transfer is in flight")

	// authorization
	ErrNotRecipient   = errors.New("caller is not the recipient")
	ErrNotContributor = errors.New("caller is not a contributor")

	// duplicate action
	ErrAlreadyVoted        = errors.New("caller already voted")
	ErrEscrowAlreadyExists = errors.New("escrow already exists")

	// transfer failure
	ErrTransferFailed = errors.New("transfer failed")

	// not found
	ErrEscrowNotFound = errors.New("escrow not found")

	// storage
	ErrEscrowCorruptedStorage = errors.New("the escrow database was not shutdown properly")
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidAmount, KindValidation},
	{ErrInvalidAddress, KindValidation},
	{ErrInvalidRecipient, KindValidation},
	{ErrInvalidCaps, KindValidation},
	{ErrInvalidFundingDeadline, KindValidation},
	{ErrInvalidVotingPeriod, KindValidation},
	{ErrNoMilestones, KindValidation},
	{ErrTooManyMilestones, KindValidation},
	{ErrMilestoneCountMismatch, KindValidation},
	{ErrInvalidMilestoneAmount, KindValidation},
	{ErrInvalidMilestoneDescription, KindValidation},
	{ErrInvalidMilestoneDeadline, KindValidation},
	{ErrMilestoneSumMismatch, KindValidation},
	{ErrUnknownMilestone, KindValidation},
	{ErrFundingDeadlinePassed, KindState},
	{ErrCampaignEnded, KindState},
	{ErrHardCapReached, KindState},
	{ErrCampaignNotFunded, KindState},
	{ErrNotCurrentMilestone, KindState},
	{ErrMilestoneNotPending, KindState},
	{ErrMilestoneNotVoting, KindState},
	{ErrVotingClosed, KindState},
	{ErrVotingStillOpen, KindState},
	{ErrNothingToRefund, KindState},
	{ErrReentrantCall, KindState},
	{ErrNotRecipient, KindAuthorization},
	{ErrNotContributor, KindAuthorization},
	{ErrAlreadyVoted, KindDuplicate},
	{ErrEscrowAlreadyExists, KindDuplicate},
	{ErrTransferFailed, KindTransfer},
	{ErrEscrowNotFound, KindNotFound},
	{ErrEscrowCorruptedStorage, KindStorage},
	{ErrSerializationInvalidRecord, KindStorage},
}

// KindOf returns the ErrorKind of the given (possibly wrapped) error.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	for _, entry := range errorKinds {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}

	var dbErr *storage.DatabaseError
	if errors.As(err, &dbErr) {
		return KindStorage
	}

	return KindUnknown
}
