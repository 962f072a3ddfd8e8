package escrow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/model/storage"
	"github.com/gohornet/escrow/pkg/utils"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/syncutils"
	iotago "github.com/iotaledger/iota.go/v3"
)

// Manager hosts all escrow instances of the node.
type Manager struct {
	// the logger used to log events.
	*utils.WrappedLogger

	syncutils.RWMutex

	// holds the Manager options.
	opts *Options

	escrowStore       kvstore.KVStore
	escrowStoreHealth *storage.StoreHealthTracker

	escrows map[EscrowID]*Escrow
	// the sequence number of the next created escrow.
	nextSequence uint64

	// Events are the events issued by the escrows.
	Events *Events
}

// the default options applied to the Manager.
var defaultOptions = []Option{
	WithClock(time.Now),
	WithBech32HRP(iotago.PrefixTestnet),
}

// Options define options for the Manager.
type Options struct {
	logger     *logger.Logger
	clock      func() time.Time
	transferer Transferer
	hrp        iotago.NetworkPrefix
}

// applies the given Option.
func (so *Options) apply(opts ...Option) {
	for _, opt := range opts {
		opt(so)
	}
}

// WithLogger enables logging within the Manager.
func WithLogger(logger *logger.Logger) Option {
	return func(opts *Options) {
		opts.logger = logger
	}
}

// WithClock defines the source of the current time.
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.clock = clock
	}
}

// WithTransferer defines how funds leave the escrows.
func WithTransferer(transferer Transferer) Option {
	return func(opts *Options) {
		opts.transferer = transferer
	}
}

// WithBech32HRP defines the network prefix used in log messages.
func WithBech32HRP(hrp iotago.NetworkPrefix) Option {
	return func(opts *Options) {
		opts.hrp = hrp
	}
}

// Option is a function setting a Manager option.
type Option func(opts *Options)

// NewManager creates a new Manager instance and loads all stored escrows.
func NewManager(escrowStore kvstore.KVStore, opts ...Option) (*Manager, error) {

	options := &Options{}
	options.apply(defaultOptions...)
	options.apply(opts...)

	if options.transferer == nil {
		return nil, ErrMissingTransferer
	}

	manager := &Manager{
		WrappedLogger:     utils.NewWrappedLogger(options.logger),
		opts:              options,
		escrowStore:       escrowStore,
		escrowStoreHealth: storage.NewStoreHealthTracker(escrowStore),
		escrows:           make(map[EscrowID]*Escrow),
		Events:            newEvents(),
	}

	if err := manager.init(); err != nil {
		return nil, err
	}

	return manager, nil
}

func (m *Manager) init() error {

	corrupted, err := m.escrowStoreHealth.IsCorrupted()
	if err != nil {
		return err
	}
	if corrupted {
		return ErrEscrowCorruptedStorage
	}

	correctDatabaseVersion, err := m.escrowStoreHealth.CheckCorrectDatabaseVersion()
	if err != nil {
		return err
	}
	if !correctDatabaseVersion {
		return errors.New("escrow database version mismatch. The database scheme was updated. Please delete the database folder.")
	}

	if err := m.loadEscrows(); err != nil {
		return err
	}

	// Mark the database as corrupted here and as clean when we shut it down
	return m.escrowStoreHealth.MarkCorrupted()
}

func (m *Manager) loadEscrows() error {

	headers := make(map[EscrowID]*header)

	var innerErr error
	if err := m.escrowStore.Iterate(kvstore.KeyPrefix{EscrowStoreKeyPrefixEscrows}, func(key kvstore.Key, value kvstore.Value) bool {

		escrowID := EscrowID{}
		copy(escrowID[:], key[1:]) // Skip the prefix

		var h *header
		if h, innerErr = headerFromBytes(value); innerErr != nil {
			return false
		}

		headers[escrowID] = h
		return true
	}); err != nil {
		return err
	}
	if innerErr != nil {
		return innerErr
	}

	for escrowID, h := range headers {
		e := m.newEscrow(h)
		if e.id != escrowID {
			return fmt.Errorf("%w: escrow %s does not match its stored ID", ErrSerializationInvalidRecord, escrowID.ToHex())
		}
		if err := e.load(); err != nil {
			return errors.Wrapf(err, "failed to load escrow %s", escrowID.ToHex())
		}
		e.publish()
		m.escrows[escrowID] = e
		if h.sequence >= m.nextSequence {
			m.nextSequence = h.sequence + 1
		}
	}

	m.LogInfof("loaded %d escrows", len(m.escrows))

	return nil
}

func (m *Manager) newEscrow(h *header) *Escrow {
	wrappedLogger := m.WrappedLogger
	if m.opts.logger != nil {
		wrappedLogger = utils.NewWrappedLogger(m.opts.logger.Named(h.id().ToHex()[:8]))
	}
	return newEscrow(h, m.escrowStore, m.opts.transferer, m.Events, m.opts.clock, wrappedLogger)
}

// CloseDatabase marks the store as healthy and flushes it.
// The store itself is closed by its owner.
func (m *Manager) CloseDatabase() error {
	m.Lock()
	defer m.Unlock()

	var flushError error
	if err := m.escrowStoreHealth.MarkHealthy(); err != nil {
		flushError = err
	}
	if err := m.escrowStore.Flush(); err != nil {
		flushError = err
	}
	return flushError
}

// Now returns the current time of the manager's clock.
func (m *Manager) Now() time.Time {
	return m.opts.clock()
}

// Bech32HRP returns the network prefix of the addresses.
func (m *Manager) Bech32HRP() iotago.NetworkPrefix {
	return m.opts.hrp
}

// CreateEscrow validates the params and creates a new escrow.
func (m *Manager) CreateEscrow(creator iotago.Ed25519Address, params *Params) (EscrowID, error) {

	now := m.opts.clock()
	if err := params.Validate(now); err != nil {
		return NullEscrowID, err
	}

	m.Lock()
	defer m.Unlock()

	h := &header{
		creator:   creator,
		createdAt: now,
		sequence:  m.nextSequence,
		params:    params,
	}

	e := m.newEscrow(h)
	if _, exists := m.escrows[e.id]; exists {
		return NullEscrowID, ErrEscrowAlreadyExists
	}

	if err := e.storeInitial(h); err != nil {
		return NullEscrowID, err
	}
	e.publish()
	m.escrows[e.id] = e
	m.nextSequence++

	m.LogInfof("created escrow %s for recipient %s, soft cap %s, hard cap %s, %d milestones", e.id.ToHex(), params.Recipient.Bech32(m.opts.hrp), formatAmount(params.SoftCap), formatAmount(params.HardCap), len(params.Milestones))

	m.Events.trigger(&EscrowCreatedRecord{
		EscrowID:  e.id,
		Creator:   creator,
		Recipient: params.Recipient,
		SoftCap:   params.SoftCap,
		HardCap:   params.HardCap,
	})

	return e.id, nil
}

// Escrow returns the escrow with the given ID.
func (m *Manager) Escrow(escrowID EscrowID) (*Escrow, error) {
	m.RLock()
	defer m.RUnlock()

	e, exists := m.escrows[escrowID]
	if !exists {
		return nil, ErrEscrowNotFound
	}
	return e, nil
}

// EscrowIDs returns the IDs of all escrows ordered by creation time.
func (m *Manager) EscrowIDs() []EscrowID {
	m.RLock()
	defer m.RUnlock()

	escrows := make([]*Escrow, 0, len(m.escrows))
	for _, e := range m.escrows {
		escrows = append(escrows, e)
	}
	sort.Slice(escrows, func(i, j int) bool {
		if !escrows[i].createdAt.Equal(escrows[j].createdAt) {
			return escrows[i].createdAt.Before(escrows[j].createdAt)
		}
		return escrows[i].sequence < escrows[j].sequence
	})

	ids := make([]EscrowID, len(escrows))
	for i, e := range escrows {
		ids[i] = e.id
	}
	return ids
}

// EscrowsWithStatus returns the number of escrows per derived lifecycle status.
func (m *Manager) EscrowsWithStatus() map[Status]int {
	m.RLock()
	defer m.RUnlock()

	now := m.opts.clock()
	result := make(map[Status]int)
	for _, e := range m.escrows {
		result[e.View().Status(now)]++
	}
	return result
}

// SyncStatuses persists the derived lifecycle status of all escrows.
// It returns the number of escrows that changed their status.
func (m *Manager) SyncStatuses(ctx context.Context) (int, error) {
	m.RLock()
	escrows := make([]*Escrow, 0, len(m.escrows))
	for _, e := range m.escrows {
		escrows = append(escrows, e)
	}
	m.RUnlock()

	var firstErr error
	changed := 0
	for _, e := range escrows {
		if err := ctx.Err(); err != nil {
			return changed, err
		}

		ok, err := e.SyncStatus(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("syncing status of escrow %s failed: %w", e.id.ToHex(), err)
			}
			continue
		}
		if ok {
			changed++
		}
	}
	return changed, firstErr
}

// Contribute books a contribution to the given escrow.
func (m *Manager) Contribute(ctx context.Context, escrowID EscrowID, contributor iotago.Ed25519Address, amount uint64) (*ContributionResult, error) {
	e, err := m.Escrow(escrowID)
	if err != nil {
		return nil, err
	}
	return e.Contribute(ctx, contributor, amount)
}

// ClaimRefund pays out the refund of the contributor in the given escrow.
func (m *Manager) ClaimRefund(ctx context.Context, escrowID EscrowID, contributor iotago.Ed25519Address) (uint64, error) {
	e, err := m.Escrow(escrowID)
	if err != nil {
		return 0, err
	}
	return e.ClaimRefund(ctx, contributor)
}

// SubmitMilestone opens the vote on a milestone of the given escrow.
func (m *Manager) SubmitMilestone(ctx context.Context, escrowID EscrowID, caller iotago.Ed25519Address, index uint16) error {
	e, err := m.Escrow(escrowID)
	if err != nil {
		return err
	}
	return e.SubmitMilestone(ctx, caller, index)
}

// Vote casts a vote on a milestone of the given escrow.
func (m *Manager) Vote(ctx context.Context, escrowID EscrowID, voter iotago.Ed25519Address, index uint16, approve bool) (Resolution, error) {
	e, err := m.Escrow(escrowID)
	if err != nil {
		return ResolutionUndecided, err
	}
	return e.Vote(ctx, voter, index, approve)
}

// FinalizeMilestone resolves a milestone of the given escrow after its voting period.
func (m *Manager) FinalizeMilestone(ctx context.Context, escrowID EscrowID, index uint16) (Resolution, error) {
	e, err := m.Escrow(escrowID)
	if err != nil {
		return ResolutionUndecided, err
	}
	return e.FinalizeMilestone(ctx, index)
}

// VoteEmergency casts an emergency cancellation vote in the given escrow.
func (m *Manager) VoteEmergency(ctx context.Context, escrowID EscrowID, voter iotago.Ed25519Address) (bool, error) {
	e, err := m.Escrow(escrowID)
	if err != nil {
		return false, err
	}
	return e.VoteEmergency(ctx, voter)
}
