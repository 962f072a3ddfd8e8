package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/escrow/test"
	iotago "github.com/iotaledger/iota.go/v3"
)

func TestTopicsForRecord(t *testing.T) {
	escrowID := escrow.EscrowID{0xab, 0xcd}

	topics := topicsForRecord(&escrow.VoteCastRecord{EscrowID: escrowID})
	require.Equal(t, []string{
		"escrows/voteCast",
		"escrows/" + escrowID.ToHex() + "/voteCast",
	}, topics)
}

func TestRecordPayload(t *testing.T) {
	wallet := test.NewWallet("voter", 1)
	escrowID := escrow.EscrowID{0x01}

	payload, err := recordPayload(&escrow.VoteCastRecord{
		EscrowID: escrowID,
		Index:    2,
		Voter:    wallet.Address(),
		Approve:  true,
		Weight:   18446744073709551615,
	}, iotago.PrefixTestnet)
	require.NoError(t, err)

	vote := &voteCastPayload{}
	require.NoError(t, json.Unmarshal(payload, vote))
	require.Equal(t, escrowID.ToHex(), vote.EscrowID)
	require.Equal(t, uint16(2), vote.Index)
	require.Equal(t, wallet.Bech32(), vote.Voter)
	require.True(t, vote.Approve)
	// amounts keep their precision
	require.Equal(t, "18446744073709551615", vote.Weight)

	deadline := time.Unix(1650000000, 0)
	payload, err = recordPayload(&escrow.MilestoneSubmittedRecord{
		EscrowID:       escrowID,
		Index:          1,
		Description:    "beta release",
		VotingDeadline: deadline,
	}, iotago.PrefixTestnet)
	require.NoError(t, err)
	require.JSONEq(t, `{"escrowId":"`+escrowID.ToHex()+`","index":1,"description":"beta release","votingDeadline":1650000000}`, string(payload))

	payload, err = recordPayload(&escrow.StatusChangedRecord{
		EscrowID: escrowID,
		From:     escrow.StatusFunding,
		To:       escrow.StatusFunded,
	}, iotago.PrefixTestnet)
	require.NoError(t, err)
	require.JSONEq(t, `{"escrowId":"`+escrowID.ToHex()+`","from":"funding","to":"funded"}`, string(payload))

	payload, err = recordPayload(&escrow.MilestoneRejectedRecord{EscrowID: escrowID, Index: 0}, iotago.PrefixTestnet)
	require.NoError(t, err)
	require.JSONEq(t, `{"escrowId":"`+escrowID.ToHex()+`","index":0,"approved":false,"released":"0"}`, string(payload))
}

func TestRecordPayloadCoversAllRecords(t *testing.T) {
	env := test.NewEscrowTestEnv(t)
	defer env.Cleanup()

	e := env.CreateEscrow(1500, 600, 400)
	env.Contribute(e, env.Wallet1, 700)
	env.Contribute(e, env.Wallet2, 1000)
	env.Submit(e, 0)
	env.Vote(e, env.Wallet1, 0, true)
	env.Vote(e, env.Wallet2, 0, true)

	require.NotEmpty(t, env.Records())
	for _, record := range env.Records() {
		_, err := recordPayload(record, iotago.PrefixTestnet)
		require.NoError(t, err, record.RecordType())
	}
}
