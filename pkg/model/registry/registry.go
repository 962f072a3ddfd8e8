package registry

import (
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/iotaledger/hive.go/kvstore/utils"
	iotago "github.com/iotaledger/iota.go/v3"
)

// Registry creates escrow instances and indexes them by creator.
// The index is append-only.
type Registry struct {
	db      *gorm.DB
	manager *escrow.Manager
}

// NewRegistry opens the campaign index in the given directory.
func NewRegistry(dbPath string, manager *escrow.Manager) (*Registry, error) {

	if err := utils.CreateDirectory(dbPath, 0700); err != nil {
		return nil, err
	}

	return newRegistry(sqlite.Open(filepath.Join(dbPath, "registry.db")), manager)
}

// NewInMemoryRegistry keeps the campaign index in memory.
func NewInMemoryRegistry(manager *escrow.Manager) (*Registry, error) {
	return newRegistry(sqlite.Open("file::memory:"), manager)
}

func newRegistry(dialector gorm.Dialector, manager *escrow.Manager) (*Registry, error) {

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, err
	}

	// sqlite does not support concurrent writers
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	// Create the tables and indexes if needed
	if err := db.AutoMigrate(&campaign{}); err != nil {
		return nil, err
	}

	r := &Registry{
		db:      db,
		manager: manager,
	}

	if err := r.sync(); err != nil {
		return nil, err
	}

	return r, nil
}

// sync adds escrows that exist in the escrow store but are missing in the index.
func (r *Registry) sync() error {

	for _, escrowID := range r.manager.EscrowIDs() {
		e, err := r.manager.Escrow(escrowID)
		if err != nil {
			return err
		}
		if err := r.insert(e); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) insert(e *escrow.Escrow) error {

	escrowID := e.ID()
	creator := e.Creator()
	recipient := e.Params().Recipient

	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&campaign{
		EscrowID:  escrowID[:],
		Creator:   creator[:],
		Recipient: recipient[:],
		CreatedAt: e.CreatedAt(),
	}).Error
}

// CreateCampaign creates a new escrow and appends it to the index.
func (r *Registry) CreateCampaign(creator iotago.Ed25519Address, req *CreateRequest) (escrow.EscrowID, error) {

	specs, err := escrow.NewMilestoneSpecs(req.Descriptions, req.Amounts, req.Deadlines)
	if err != nil {
		return escrow.NullEscrowID, err
	}

	escrowID, err := r.manager.CreateEscrow(creator, &escrow.Params{
		Recipient:       req.Recipient,
		SoftCap:         req.SoftCap,
		HardCap:         req.HardCap,
		FundingDeadline: req.FundingDeadline,
		VotingPeriod:    req.VotingPeriod,
		Milestones:      specs,
	})
	if err != nil {
		return escrow.NullEscrowID, err
	}

	e, err := r.manager.Escrow(escrowID)
	if err != nil {
		return escrow.NullEscrowID, err
	}

	// the escrow exists even if indexing fails, it is added on the next start
	if err := r.insert(e); err != nil {
		return escrowID, errors.Wrap(err, "failed to index campaign")
	}

	return escrowID, nil
}

// Campaign returns the index entry of the given escrow.
func (r *Registry) Campaign(escrowID escrow.EscrowID) (*Campaign, error) {
	result := &campaign{}
	if err := r.db.Where("escrow_id = ?", escrowID[:]).Take(result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, escrow.ErrEscrowNotFound
		}
		return nil, err
	}
	return result.toCampaign(), nil
}

// Campaigns returns the index entries matching the filters in creation order.
func (r *Registry) Campaigns(filter ...FilterOption) ([]*Campaign, error) {
	opts := filterOptions(filter)
	query := r.db.Model(&campaign{})

	if opts.creator != nil {
		query = query.Where("creator = ?", opts.creator[:])
	}

	if opts.recipient != nil {
		query = query.Where("recipient = ?", opts.recipient[:])
	}

	if opts.afterSequence > 0 {
		query = query.Where("sequence > ?", opts.afterSequence)
	}

	if opts.maxResults > 0 {
		query = query.Limit(opts.maxResults)
	}

	var results []*campaign
	if err := query.Order("sequence asc").Find(&results).Error; err != nil {
		return nil, err
	}

	campaigns := make([]*Campaign, len(results))
	for i, result := range results {
		campaigns[i] = result.toCampaign()
	}
	return campaigns, nil
}

// CampaignsByCreator returns all campaigns of the given creator in creation order.
func (r *Registry) CampaignsByCreator(creator iotago.Ed25519Address) ([]*Campaign, error) {
	return r.Campaigns(FilterCreator(creator))
}

// Count returns the number of indexed campaigns.
func (r *Registry) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&campaign{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Registry) CloseDatabase() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
