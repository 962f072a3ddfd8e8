package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/model/escrow"
	iotago "github.com/iotaledger/iota.go/v3"
)

var (
	// ErrPayoutRejected is returned when the payout service did not accept a transfer.
	ErrPayoutRejected = errors.New("payout rejected")
)

// WebhookRequest is the body sent to the payout service.
type WebhookRequest struct {
	EscrowID string `json:"escrowId"`
	To       string `json:"to"`
	Amount   string `json:"amount"`
	Reason   string `json:"reason"`
}

// Webhook is a Transferer that hands every transfer to an external payout service.
// A transfer only succeeds if the service answers with a 2xx status code.
type Webhook struct {
	url    string
	hrp    iotago.NetworkPrefix
	client *http.Client
}

// NewWebhook creates a new Webhook.
func NewWebhook(url string, hrp iotago.NetworkPrefix, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		hrp:    hrp,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *Webhook) Transfer(ctx context.Context, transfer *escrow.Transfer) error {

	body, err := json.Marshal(&WebhookRequest{
		EscrowID: transfer.EscrowID.ToHex(),
		To:       transfer.To.Bech32(w.hrp),
		Amount:   strconv.FormatUint(transfer.Amount, 10),
		Reason:   transfer.Reason.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return errors.WithMessage(ErrPayoutRejected, fmt.Sprintf("status %d: %s", res.StatusCode, bytes.TrimSpace(msg)))
	}

	return nil
}
