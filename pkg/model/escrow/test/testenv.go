package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/payout"
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/syncutils"
)

var (
	// ErrInjectedTransferFailure is returned by the test transferer if failures are enabled.
	ErrInjectedTransferFailure = errors.New("injected transfer failure")

	genesisTime = time.Date(2022, time.March, 21, 12, 0, 0, 0, time.UTC)
)

// TransferHook is called for every transfer before it is booked.
type TransferHook func(ctx context.Context, transfer *escrow.Transfer)

type EscrowTestEnv struct {
	t *testing.T

	clockLock syncutils.RWMutex
	now       time.Time

	Creator   *Wallet
	Recipient *Wallet
	Wallet1   *Wallet
	Wallet2   *Wallet
	Wallet3   *Wallet
	Wallet4   *Wallet

	store            kvstore.KVStore
	journal          *payout.Journal
	failTransfers    *atomic.Bool
	transferHookLock syncutils.Mutex
	transferHook     TransferHook

	recordsLock syncutils.Mutex
	records     []escrow.LogRecord
	onRecord    *events.Closure

	manager *escrow.Manager
}

func NewEscrowTestEnv(t *testing.T) *EscrowTestEnv {

	env := &EscrowTestEnv{
		t:             t,
		now:           genesisTime,
		Creator:       NewWallet("Creator", 0),
		Recipient:     NewWallet("Recipient", 0),
		Wallet1:       NewWallet("Seed1", 0),
		Wallet2:       NewWallet("Seed2", 0),
		Wallet3:       NewWallet("Seed3", 0),
		Wallet4:       NewWallet("Seed4", 0),
		store:         mapdb.NewMapDB(),
		journal:       payout.NewJournal(),
		failTransfers: atomic.NewBool(false),
	}

	env.onRecord = events.NewClosure(func(record escrow.LogRecord) {
		env.recordsLock.Lock()
		defer env.recordsLock.Unlock()
		env.records = append(env.records, record)
	})

	env.manager = env.newManager()

	return env
}

func (env *EscrowTestEnv) newManager() *escrow.Manager {
	manager, err := escrow.NewManager(env.store,
		escrow.WithClock(env.Now),
		escrow.WithTransferer(escrow.TransfererFunc(env.transfer)),
	)
	require.NoError(env.t, err)

	for _, event := range manager.Events.All() {
		event.Attach(env.onRecord)
	}

	return manager
}

func (env *EscrowTestEnv) transfer(ctx context.Context, transfer *escrow.Transfer) error {

	env.transferHookLock.Lock()
	hook := env.transferHook
	env.transferHookLock.Unlock()

	if hook != nil {
		hook(ctx, transfer)
	}

	if env.failTransfers.Load() {
		return ErrInjectedTransferFailure
	}

	return env.journal.Transfer(ctx, transfer)
}

func (env *EscrowTestEnv) Cleanup() {
	if env.manager != nil {
		require.NoError(env.t, env.manager.CloseDatabase())
	}
}

// Reload simulates a restart of the node on the same store.
func (env *EscrowTestEnv) Reload() {
	require.NoError(env.t, env.manager.CloseDatabase())
	env.manager = env.newManager()
}

func (env *EscrowTestEnv) Manager() *escrow.Manager {
	return env.manager
}

func (env *EscrowTestEnv) Store() kvstore.KVStore {
	return env.store
}

func (env *EscrowTestEnv) Journal() *payout.Journal {
	return env.journal
}

func (env *EscrowTestEnv) Now() time.Time {
	env.clockLock.RLock()
	defer env.clockLock.RUnlock()
	return env.now
}

// AdvanceTime moves the clock forward.
func (env *EscrowTestEnv) AdvanceTime(d time.Duration) {
	env.clockLock.Lock()
	defer env.clockLock.Unlock()
	env.now = env.now.Add(d)
}

// SetTime sets the clock to the given time.
func (env *EscrowTestEnv) SetTime(now time.Time) {
	env.clockLock.Lock()
	defer env.clockLock.Unlock()
	env.now = now
}

// FailTransfers makes every following transfer fail.
func (env *EscrowTestEnv) FailTransfers(fail bool) {
	env.failTransfers.Store(fail)
}

// OnTransfer installs a hook that is called for every transfer, before it is booked.
func (env *EscrowTestEnv) OnTransfer(hook TransferHook) {
	env.transferHookLock.Lock()
	defer env.transferHookLock.Unlock()
	env.transferHook = hook
}

// Records returns all log records in the order they were triggered.
func (env *EscrowTestEnv) Records() []escrow.LogRecord {
	env.recordsLock.Lock()
	defer env.recordsLock.Unlock()

	result := make([]escrow.LogRecord, len(env.records))
	copy(result, env.records)
	return result
}

// RecordTypes returns the types of all log records in the order they were triggered.
func (env *EscrowTestEnv) RecordTypes() []string {
	records := env.Records()
	types := make([]string, len(records))
	for i, record := range records {
		types[i] = record.RecordType()
	}
	return types
}

func (env *EscrowTestEnv) ClearRecords() {
	env.recordsLock.Lock()
	defer env.recordsLock.Unlock()
	env.records = nil
}

// DefaultParams creates params with a funding period of one day, a voting period of one hour
// and one milestone per amount. The soft cap is the sum of the amounts.
func (env *EscrowTestEnv) DefaultParams(hardCap uint64, amounts ...uint64) *escrow.Params {

	var softCap uint64
	specs := make([]*escrow.MilestoneSpec, len(amounts))
	for i, amount := range amounts {
		softCap += amount
		specs[i] = &escrow.MilestoneSpec{
			Description: "Milestone " + string(rune('A'+i)),
			Amount:      amount,
			Deadline:    env.Now().Add(time.Duration(i+2) * 24 * time.Hour),
		}
	}

	return &escrow.Params{
		Recipient:       env.Recipient.Address(),
		SoftCap:         softCap,
		HardCap:         hardCap,
		FundingDeadline: env.Now().Add(24 * time.Hour),
		VotingPeriod:    time.Hour,
		Milestones:      specs,
	}
}

// CreateEscrow creates an escrow with DefaultParams.
func (env *EscrowTestEnv) CreateEscrow(hardCap uint64, amounts ...uint64) *escrow.Escrow {
	return env.CreateEscrowWithParams(env.DefaultParams(hardCap, amounts...))
}

func (env *EscrowTestEnv) CreateEscrowWithParams(params *escrow.Params) *escrow.Escrow {
	escrowID, err := env.manager.CreateEscrow(env.Creator.Address(), params)
	require.NoError(env.t, err)

	e, err := env.manager.Escrow(escrowID)
	require.NoError(env.t, err)
	return e
}

// Escrow returns the escrow with the given ID of the current manager.
func (env *EscrowTestEnv) Escrow(escrowID escrow.EscrowID) *escrow.Escrow {
	e, err := env.manager.Escrow(escrowID)
	require.NoError(env.t, err)
	return e
}

func (env *EscrowTestEnv) Contribute(e *escrow.Escrow, wallet *Wallet, amount uint64) *escrow.ContributionResult {
	result, err := e.Contribute(context.Background(), wallet.Address(), amount)
	require.NoError(env.t, err)
	return result
}

func (env *EscrowTestEnv) Submit(e *escrow.Escrow, index uint16) {
	require.NoError(env.t, e.SubmitMilestone(context.Background(), env.Recipient.Address(), index))
}

func (env *EscrowTestEnv) Vote(e *escrow.Escrow, wallet *Wallet, index uint16, approve bool) escrow.Resolution {
	resolution, err := e.Vote(context.Background(), wallet.Address(), index, approve)
	require.NoError(env.t, err)
	return resolution
}

func (env *EscrowTestEnv) Finalize(e *escrow.Escrow, index uint16) escrow.Resolution {
	resolution, err := e.FinalizeMilestone(context.Background(), index)
	require.NoError(env.t, err)
	return resolution
}

func (env *EscrowTestEnv) ClaimRefund(e *escrow.Escrow, wallet *Wallet) uint64 {
	refund, err := e.ClaimRefund(context.Background(), wallet.Address())
	require.NoError(env.t, err)
	return refund
}

// AssertInvariants checks the monetary invariants of the escrow against the transfer journal.
func (env *EscrowTestEnv) AssertInvariants(e *escrow.Escrow) {
	view := e.View()

	var sum uint64
	for _, ms := range view.Milestones {
		sum += ms.Amount
	}
	require.Equal(env.t, view.Params.SoftCap, sum)
	require.LessOrEqual(env.t, view.TotalReleased, view.TotalRaised)
	require.LessOrEqual(env.t, view.TotalRaised, view.Params.HardCap)
	require.LessOrEqual(env.t, view.TotalReleased+view.TotalRefunded, view.TotalRaised)

	var contributed, claimed uint64
	for _, c := range view.Contributors() {
		require.LessOrEqual(env.t, c.RefundClaimed, c.Contributed)
		contributed += c.Contributed
		claimed += c.RefundClaimed
	}
	require.Equal(env.t, view.TotalRaised, contributed)
	require.Equal(env.t, view.TotalRefunded, claimed)
	require.Equal(env.t, uint32(len(view.Contributors())), view.ContributorCount)

	var released uint64
	for _, transfer := range env.journal.Transfers() {
		if transfer.EscrowID == e.ID() && transfer.Reason == escrow.TransferReasonRelease {
			released += transfer.Amount
		}
	}
	require.Equal(env.t, view.TotalReleased, released)
	require.Equal(env.t, view.TotalReleased, env.journal.Received(view.Params.Recipient))
}
