package escrow

import (
	"time"

	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/model/storage"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/marshalutil"
	iotago "github.com/iotaledger/iota.go/v3"
)

// Escrows

func escrowKeyForEscrowID(escrowID EscrowID) []byte {
	m := marshalutil.New(33)
	m.WriteByte(EscrowStoreKeyPrefixEscrows) // 1 byte
	m.WriteBytes(escrowID[:])                // 32 bytes
	return m.Bytes()
}

// header is the immutable part of an escrow.
// The sequence number is assigned by the manager and keeps IDs of identical campaigns apart.
type header struct {
	creator   iotago.Ed25519Address
	createdAt time.Time
	sequence  uint64
	params    *Params
}

func (h *header) bytes() []byte {
	m := marshalutil.New()
	m.WriteBytes(h.creator[:])
	m.WriteInt64(unixNano(h.createdAt))
	m.WriteUint64(h.sequence)
	h.params.marshal(m)
	return m.Bytes()
}

func (h *header) id() EscrowID {
	return blake2bSum(h.bytes())
}

func headerFromBytes(data []byte) (*header, error) {
	m := marshalutil.New(data)

	creator, err := m.ReadBytes(iotago.Ed25519AddressBytesLength)
	if err != nil {
		return nil, err
	}

	createdAt, err := m.ReadInt64()
	if err != nil {
		return nil, err
	}

	sequence, err := m.ReadUint64()
	if err != nil {
		return nil, err
	}

	h := &header{
		createdAt: timeFromUnixNano(createdAt),
		sequence:  sequence,
		params:    &Params{},
	}
	copy(h.creator[:], creator)

	if err := h.params.unmarshal(m); err != nil {
		return nil, err
	}

	return h, nil
}

// Totals

func totalsKeyForEscrowID(escrowID EscrowID) []byte {
	m := marshalutil.New(33)
	m.WriteByte(EscrowStoreKeyPrefixTotals) // 1 byte
	m.WriteBytes(escrowID[:])               // 32 bytes
	return m.Bytes()
}

func (t *totals) bytes() []byte {
	m := marshalutil.New(47)
	m.WriteByte(byte(t.status))       // 1 byte
	m.WriteUint64(t.totalRaised)      // 8 bytes
	m.WriteUint64(t.totalReleased)    // 8 bytes
	m.WriteUint64(t.totalRefunded)    // 8 bytes
	m.WriteUint32(t.contributorCount) // 4 bytes
	m.WriteUint16(t.pointer)          // 2 bytes
	m.WriteUint64(t.emergencyWeight)  // 8 bytes
	return m.Bytes()
}

func totalsFromBytes(data []byte) (*totals, error) {
	m := marshalutil.New(data)
	t := &totals{}

	status, err := m.ReadByte()
	if err != nil {
		return nil, err
	}
	t.status = Status(status)

	if t.totalRaised, err = m.ReadUint64(); err != nil {
		return nil, err
	}
	if t.totalReleased, err = m.ReadUint64(); err != nil {
		return nil, err
	}
	if t.totalRefunded, err = m.ReadUint64(); err != nil {
		return nil, err
	}
	if t.contributorCount, err = m.ReadUint32(); err != nil {
		return nil, err
	}
	if t.pointer, err = m.ReadUint16(); err != nil {
		return nil, err
	}
	if t.emergencyWeight, err = m.ReadUint64(); err != nil {
		return nil, err
	}

	return t, nil
}

// Contributors

func contributorKeyPrefixForEscrowID(escrowID EscrowID) []byte {
	m := marshalutil.New(33)
	m.WriteByte(EscrowStoreKeyPrefixContributors) // 1 byte
	m.WriteBytes(escrowID[:])                     // 32 bytes
	return m.Bytes()
}

func contributorKey(escrowID EscrowID, address iotago.Ed25519Address) []byte {
	m := marshalutil.New(65)
	m.WriteBytes(contributorKeyPrefixForEscrowID(escrowID)) // 33 bytes
	m.WriteBytes(address[:])                                // 32 bytes
	return m.Bytes()
}

func (c *Contributor) bytes() []byte {
	m := marshalutil.New(16)
	m.WriteUint64(c.Contributed)   // 8 bytes
	m.WriteUint64(c.RefundClaimed) // 8 bytes
	return m.Bytes()
}

func contributorFromBytes(data []byte) (*Contributor, error) {
	m := marshalutil.New(data)
	c := &Contributor{}

	var err error
	if c.Contributed, err = m.ReadUint64(); err != nil {
		return nil, err
	}
	if c.RefundClaimed, err = m.ReadUint64(); err != nil {
		return nil, err
	}
	return c, nil
}

// Milestones

func milestoneKeyPrefixForEscrowID(escrowID EscrowID) []byte {
	m := marshalutil.New(33)
	m.WriteByte(EscrowStoreKeyPrefixMilestones) // 1 byte
	m.WriteBytes(escrowID[:])                   // 32 bytes
	return m.Bytes()
}

func milestoneKey(escrowID EscrowID, index uint16) []byte {
	m := marshalutil.New(35)
	m.WriteBytes(milestoneKeyPrefixForEscrowID(escrowID)) // 33 bytes
	m.WriteUint16(index)                                  // 2 bytes
	return m.Bytes()
}

// only the mutable fields are stored, the rest is part of the params.
func (ms *Milestone) bytes() []byte {
	m := marshalutil.New(33)
	m.WriteByte(byte(ms.Status))              // 1 byte
	m.WriteUint64(ms.VotesFor)                // 8 bytes
	m.WriteUint64(ms.VotesAgainst)            // 8 bytes
	m.WriteInt64(unixNano(ms.VotingDeadline)) // 8 bytes
	m.WriteUint64(ms.Released)                // 8 bytes
	return m.Bytes()
}

func (ms *Milestone) load(data []byte) error {
	m := marshalutil.New(data)

	status, err := m.ReadByte()
	if err != nil {
		return err
	}
	ms.Status = MilestoneStatus(status)

	if ms.VotesFor, err = m.ReadUint64(); err != nil {
		return err
	}
	if ms.VotesAgainst, err = m.ReadUint64(); err != nil {
		return err
	}

	votingDeadline, err := m.ReadInt64()
	if err != nil {
		return err
	}
	ms.VotingDeadline = timeFromUnixNano(votingDeadline)

	if ms.Released, err = m.ReadUint64(); err != nil {
		return err
	}
	return nil
}

// Votes

func voteKeyPrefixForEscrowID(escrowID EscrowID) []byte {
	m := marshalutil.New(33)
	m.WriteByte(EscrowStoreKeyPrefixVotes) // 1 byte
	m.WriteBytes(escrowID[:])              // 32 bytes
	return m.Bytes()
}

func voteStoreKey(escrowID EscrowID, key voteKey) []byte {
	m := marshalutil.New(67)
	m.WriteBytes(voteKeyPrefixForEscrowID(escrowID)) // 33 bytes
	m.WriteUint16(key.index)                         // 2 bytes
	m.WriteBytes(key.voter[:])                       // 32 bytes
	return m.Bytes()
}

func (v *Vote) bytes() []byte {
	m := marshalutil.New(9)
	m.WriteBool(v.Approve)  // 1 byte
	m.WriteUint64(v.Weight) // 8 bytes
	return m.Bytes()
}

func voteFromBytes(data []byte) (*Vote, error) {
	m := marshalutil.New(data)
	v := &Vote{}

	var err error
	if v.Approve, err = m.ReadBool(); err != nil {
		return nil, err
	}
	if v.Weight, err = m.ReadUint64(); err != nil {
		return nil, err
	}
	return v, nil
}

// Emergency votes

func emergencyVoteKeyPrefixForEscrowID(escrowID EscrowID) []byte {
	m := marshalutil.New(33)
	m.WriteByte(EscrowStoreKeyPrefixEmergencyVotes) // 1 byte
	m.WriteBytes(escrowID[:])                       // 32 bytes
	return m.Bytes()
}

func emergencyVoteKey(escrowID EscrowID, voter iotago.Ed25519Address) []byte {
	m := marshalutil.New(65)
	m.WriteBytes(emergencyVoteKeyPrefixForEscrowID(escrowID)) // 33 bytes
	m.WriteBytes(voter[:])                                    // 32 bytes
	return m.Bytes()
}

// Loading

func (e *Escrow) load() error {

	value, err := e.store.Get(totalsKeyForEscrowID(e.id))
	if err != nil {
		return errors.Wrap(storage.NewDatabaseError(err), "failed to load escrow totals")
	}
	t, err := totalsFromBytes(value)
	if err != nil {
		return err
	}
	e.totals = *t

	var innerErr error
	if err := e.store.Iterate(contributorKeyPrefixForEscrowID(e.id), func(key kvstore.Key, value kvstore.Value) bool {
		address := iotago.Ed25519Address{}
		copy(address[:], key[33:]) // Skip the prefix

		var c *Contributor
		if c, innerErr = contributorFromBytes(value); innerErr != nil {
			return false
		}
		e.ledger.contributors[address] = c
		return true
	}); err != nil {
		return err
	}
	if innerErr != nil {
		return innerErr
	}

	for _, ms := range e.registry.milestones {
		value, err := e.store.Get(milestoneKey(e.id, ms.Index))
		if err != nil {
			return errors.Wrapf(storage.NewDatabaseError(err), "failed to load milestone %d", ms.Index)
		}
		if err := ms.load(value); err != nil {
			return err
		}
	}

	if err := e.store.Iterate(voteKeyPrefixForEscrowID(e.id), func(key kvstore.Key, value kvstore.Value) bool {
		m := marshalutil.New(key[33:]) // Skip the prefix
		k := voteKey{}
		if k.index, innerErr = m.ReadUint16(); innerErr != nil {
			return false
		}
		copy(k.voter[:], m.ReadRemainingBytes())

		var v *Vote
		if v, innerErr = voteFromBytes(value); innerErr != nil {
			return false
		}
		e.votes[k] = v
		return true
	}); err != nil {
		return err
	}
	if innerErr != nil {
		return innerErr
	}

	if err := e.store.Iterate(emergencyVoteKeyPrefixForEscrowID(e.id), func(key kvstore.Key, value kvstore.Value) bool {
		voter := iotago.Ed25519Address{}
		copy(voter[:], key[33:]) // Skip the prefix

		m := marshalutil.New(value)
		var weight uint64
		if weight, innerErr = m.ReadUint64(); innerErr != nil {
			return false
		}
		e.emergencyVotes[voter] = weight
		return true
	}); err != nil {
		return err
	}

	return innerErr
}

// Persisting

// storeInitial writes the header and the initial records of a new escrow.
func (e *Escrow) storeInitial(h *header) error {

	mutations := e.store.Batched()

	if err := mutations.Set(escrowKeyForEscrowID(e.id), h.bytes()); err != nil {
		mutations.Cancel()
		return errors.Wrap(storage.NewDatabaseError(err), "failed to store escrow")
	}

	if err := mutations.Set(totalsKeyForEscrowID(e.id), e.totals.bytes()); err != nil {
		mutations.Cancel()
		return errors.Wrap(storage.NewDatabaseError(err), "failed to store escrow totals")
	}

	for _, ms := range e.registry.milestones {
		if err := mutations.Set(milestoneKey(e.id, ms.Index), ms.bytes()); err != nil {
			mutations.Cancel()
			return errors.Wrap(storage.NewDatabaseError(err), "failed to store milestone")
		}
	}

	if err := mutations.Commit(); err != nil {
		return errors.Wrap(storage.NewDatabaseError(err), "failed to commit escrow")
	}
	return nil
}

// persist writes the current state of every record touched by the transaction in a single batch.
// Records that do not exist (anymore) are deleted.
func (e *Escrow) persist(tx *txn) error {

	mutations := e.store.Batched()

	set := func(key []byte, value []byte) error {
		if err := mutations.Set(key, value); err != nil {
			mutations.Cancel()
			return errors.Wrap(storage.NewDatabaseError(err), "failed to persist escrow record")
		}
		return nil
	}

	del := func(key []byte) error {
		if err := mutations.Delete(key); err != nil {
			mutations.Cancel()
			return errors.Wrap(storage.NewDatabaseError(err), "failed to delete escrow record")
		}
		return nil
	}

	if tx.totals != nil {
		if err := set(totalsKeyForEscrowID(e.id), e.totals.bytes()); err != nil {
			return err
		}
	}

	for address := range tx.contributors {
		if c := e.ledger.contributor(address); c != nil {
			if err := set(contributorKey(e.id, address), c.bytes()); err != nil {
				return err
			}
			continue
		}
		if err := del(contributorKey(e.id, address)); err != nil {
			return err
		}
	}

	for index := range tx.milestones {
		if err := set(milestoneKey(e.id, index), e.registry.milestones[index].bytes()); err != nil {
			return err
		}
	}

	for key := range tx.votes {
		if v, exists := e.votes[key]; exists {
			if err := set(voteStoreKey(e.id, key), v.bytes()); err != nil {
				return err
			}
			continue
		}
		if err := del(voteStoreKey(e.id, key)); err != nil {
			return err
		}
	}

	for voter := range tx.emergencyVotes {
		if weight, exists := e.emergencyVotes[voter]; exists {
			m := marshalutil.New(8)
			m.WriteUint64(weight)
			if err := set(emergencyVoteKey(e.id, voter), m.Bytes()); err != nil {
				return err
			}
			continue
		}
		if err := del(emergencyVoteKey(e.id, voter)); err != nil {
			return err
		}
	}

	if err := mutations.Commit(); err != nil {
		return errors.Wrap(storage.NewDatabaseError(err), "failed to commit escrow records")
	}
	return nil
}
