package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/escrow/test"
	"github.com/gohornet/escrow/pkg/model/registry"
)

func newCreateRequest(env *test.EscrowTestEnv, amounts ...uint64) *registry.CreateRequest {
	params := env.DefaultParams(0, amounts...)

	req := &registry.CreateRequest{
		Recipient:       params.Recipient,
		SoftCap:         params.SoftCap,
		HardCap:         params.SoftCap * 2,
		FundingDeadline: params.FundingDeadline,
		VotingPeriod:    params.VotingPeriod,
	}
	for _, spec := range params.Milestones {
		req.Descriptions = append(req.Descriptions, spec.Description)
		req.Amounts = append(req.Amounts, spec.Amount)
		req.Deadlines = append(req.Deadlines, spec.Deadline)
	}
	return req
}

func TestCreateCampaign(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	r, err := registry.NewInMemoryRegistry(env.Manager())
	require.NoError(t, err)
	defer func() { require.NoError(t, r.CloseDatabase()) }()

	escrowID, err := r.CreateCampaign(env.Creator.Address(), newCreateRequest(env, 600, 400))
	require.NoError(t, err)

	e := env.Escrow(escrowID)
	require.Equal(t, uint64(1000), e.Params().SoftCap)
	require.Equal(t, uint64(2000), e.Params().HardCap)
	require.Len(t, e.Params().Milestones, 2)
	require.Equal(t, escrow.StatusFunding, e.Status())

	c, err := r.Campaign(escrowID)
	require.NoError(t, err)
	require.Equal(t, escrowID, c.EscrowID)
	require.Equal(t, env.Creator.Address(), c.Creator)
	require.Equal(t, env.Recipient.Address(), c.Recipient)
	require.Equal(t, uint64(1), c.Sequence)

	_, err = r.Campaign(escrow.EscrowID{0xff})
	require.ErrorIs(t, err, escrow.ErrEscrowNotFound)
}

func TestCreateCampaignMismatchedMilestones(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	r, err := registry.NewInMemoryRegistry(env.Manager())
	require.NoError(t, err)
	defer func() { require.NoError(t, r.CloseDatabase()) }()

	req := newCreateRequest(env, 600, 400)
	req.Amounts = req.Amounts[:1]

	_, err = r.CreateCampaign(env.Creator.Address(), req)
	require.ErrorIs(t, err, escrow.ErrMilestoneCountMismatch)

	req = newCreateRequest(env, 600, 400)
	req.SoftCap = 999

	_, err = r.CreateCampaign(env.Creator.Address(), req)
	require.ErrorIs(t, err, escrow.ErrMilestoneSumMismatch)

	count, err := r.Count()
	require.NoError(t, err)
	require.Zero(t, count)
	require.Empty(t, env.Manager().EscrowIDs())
}

func TestCampaignsByCreator(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	r, err := registry.NewInMemoryRegistry(env.Manager())
	require.NoError(t, err)
	defer func() { require.NoError(t, r.CloseDatabase()) }()

	var created []escrow.EscrowID
	for i := 0; i < 3; i++ {
		escrowID, err := r.CreateCampaign(env.Creator.Address(), newCreateRequest(env, 100+uint64(i)))
		require.NoError(t, err)
		created = append(created, escrowID)
		env.AdvanceTime(time.Second)
	}

	otherID, err := r.CreateCampaign(env.Wallet1.Address(), newCreateRequest(env, 500))
	require.NoError(t, err)

	campaigns, err := r.CampaignsByCreator(env.Creator.Address())
	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	for i, c := range campaigns {
		require.Equal(t, created[i], c.EscrowID)
	}

	campaigns, err = r.CampaignsByCreator(env.Wallet1.Address())
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	require.Equal(t, otherID, campaigns[0].EscrowID)

	campaigns, err = r.CampaignsByCreator(env.Wallet2.Address())
	require.NoError(t, err)
	require.Empty(t, campaigns)

	campaigns, err = r.Campaigns(registry.FilterMaxResults(2))
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	require.Equal(t, created[0], campaigns[0].EscrowID)

	campaigns, err = r.Campaigns(registry.FilterAfterSequence(campaigns[1].Sequence))
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	require.Equal(t, created[2], campaigns[0].EscrowID)
	require.Equal(t, otherID, campaigns[1].EscrowID)

	campaigns, err = r.Campaigns(registry.FilterRecipient(env.Recipient.Address()))
	require.NoError(t, err)
	require.Len(t, campaigns, 4)
}

func TestRegistrySyncsExistingEscrows(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	// escrows created before the index existed
	e1 := env.CreateEscrow(2000, 1000)
	env.AdvanceTime(time.Second)
	e2 := env.CreateEscrow(3000, 1500)

	r, err := registry.NewRegistry(t.TempDir(), env.Manager())
	require.NoError(t, err)
	defer func() { require.NoError(t, r.CloseDatabase()) }()

	campaigns, err := r.CampaignsByCreator(env.Creator.Address())
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	require.Equal(t, e1.ID(), campaigns[0].EscrowID)
	require.Equal(t, e2.ID(), campaigns[1].EscrowID)
}

func TestRegistryIsPersisted(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	dbPath := t.TempDir()

	r, err := registry.NewRegistry(dbPath, env.Manager())
	require.NoError(t, err)

	escrowID, err := r.CreateCampaign(env.Creator.Address(), newCreateRequest(env, 1000))
	require.NoError(t, err)
	require.NoError(t, r.CloseDatabase())

	env.Reload()

	r, err = registry.NewRegistry(dbPath, env.Manager())
	require.NoError(t, err)
	defer func() { require.NoError(t, r.CloseDatabase()) }()

	count, err := r.Count()
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	c, err := r.Campaign(escrowID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), c.Sequence)
}
