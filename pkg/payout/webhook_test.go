package payout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/payout"
	iotago "github.com/iotaledger/iota.go/v3"
)

func TestWebhookTransfer(t *testing.T) {

	var received *payout.WebhookRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		received = &payout.WebhookRequest{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	to := iotago.Ed25519Address{1, 2, 3}
	transfer := &escrow.Transfer{
		EscrowID: escrow.EscrowID{4, 5, 6},
		To:       to,
		Amount:   1_000_000,
		Reason:   escrow.TransferReasonRefund,
	}

	webhook := payout.NewWebhook(server.URL, iotago.PrefixTestnet, time.Second)
	require.NoError(t, webhook.Transfer(context.Background(), transfer))

	require.NotNil(t, received)
	require.Equal(t, transfer.EscrowID.ToHex(), received.EscrowID)
	require.Equal(t, to.Bech32(iotago.PrefixTestnet), received.To)
	require.Equal(t, "1000000", received.Amount)
	require.Equal(t, "refund", received.Reason)
}

func TestWebhookTransferRejected(t *testing.T) {

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient funds", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	webhook := payout.NewWebhook(server.URL, iotago.PrefixTestnet, time.Second)
	err := webhook.Transfer(context.Background(), &escrow.Transfer{Amount: 1})
	require.ErrorIs(t, err, payout.ErrPayoutRejected)
	require.Contains(t, err.Error(), "insufficient funds")
}

func TestJournal(t *testing.T) {

	journal := payout.NewJournal()
	a := iotago.Ed25519Address{1}
	b := iotago.Ed25519Address{2}
	escrowID := escrow.EscrowID{9}

	require.NoError(t, journal.Transfer(context.Background(), &escrow.Transfer{EscrowID: escrowID, To: a, Amount: 5}))
	require.NoError(t, journal.Transfer(context.Background(), &escrow.Transfer{EscrowID: escrowID, To: b, Amount: 3}))
	require.NoError(t, journal.Transfer(context.Background(), &escrow.Transfer{EscrowID: escrow.EscrowID{8}, To: a, Amount: 7}))

	require.Len(t, journal.Transfers(), 3)
	require.Equal(t, uint64(12), journal.Received(a))
	require.Equal(t, uint64(3), journal.Received(b))
	require.Equal(t, uint64(8), journal.Total(escrowID))
}
