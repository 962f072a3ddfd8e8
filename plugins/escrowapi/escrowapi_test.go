package escrowapi

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/gohornet/escrow/pkg/jwt"
	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/escrow/test"
	"github.com/gohornet/escrow/pkg/model/registry"
	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

type apiTestEnv struct {
	*test.EscrowTestEnv
	t    *testing.T
	echo *echo.Echo
}

func newAPITestEnv(t *testing.T, insecureAddressTokens bool) *apiTestEnv {
	env := test.NewEscrowTestEnv(t)

	r, err := registry.NewInMemoryRegistry(env.Manager())
	require.NoError(t, err)

	auth, err := jwt.NewAuth("escrow", time.Hour, []byte("0123456789abcdef0123456789abcdef"), nil)
	require.NoError(t, err)

	deps = dependencies{
		EscrowManager:         env.Manager(),
		Registry:              r,
		JWTAuth:               auth,
		MaxResults:            2,
		InsecureAddressTokens: insecureAddressTokens,
	}

	e := echo.New()
	e.HTTPErrorHandler = restapi.ErrorHandler()
	setupRoutes(e.Group("/api/" + APIRoute))

	t.Cleanup(func() {
		require.NoError(t, r.CloseDatabase())
		env.Cleanup()
	})

	return &apiTestEnv{
		EscrowTestEnv: env,
		t:             t,
		echo:          e,
	}
}

func (api *apiTestEnv) request(method string, path string, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(api.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/"+APIRoute+path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	api.echo.ServeHTTP(rec, req)
	return rec
}

func (api *apiTestEnv) decode(rec *httptest.ResponseRecorder, statusCode int, target interface{}) {
	require.Equal(api.t, statusCode, rec.Code, rec.Body.String())
	if target != nil {
		require.NoError(api.t, json.Unmarshal(rec.Body.Bytes(), target))
	}
}

// token requests a signed token for the wallet.
func (api *apiTestEnv) token(wallet *test.Wallet) string {
	privateKey, publicKey := wallet.KeyPair()
	timestamp := api.Now().Unix()

	rec := api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{
		PublicKey: hex.EncodeToString(publicKey),
		Signature: hex.EncodeToString(ed25519.Sign(privateKey, restapi.AuthMessage(iotago.PrefixTestnet, timestamp))),
		Timestamp: timestamp,
	})

	resp := &tokenResponse{}
	api.decode(rec, http.StatusOK, resp)
	require.Equal(api.t, wallet.Bech32(), resp.Address)
	return resp.Token
}

func (api *apiTestEnv) createCampaign(token string, hardCap uint64, amounts ...uint64) string {
	params := api.DefaultParams(hardCap, amounts...)

	request := &createCampaignRequest{
		Recipient:       api.Recipient.Bech32(),
		SoftCap:         formatAmount(params.SoftCap),
		HardCap:         formatAmount(hardCap),
		FundingDeadline: params.FundingDeadline.Unix(),
		VotingPeriod:    int64(params.VotingPeriod / time.Second),
	}
	for _, spec := range params.Milestones {
		request.Milestones = append(request.Milestones, &createMilestoneRequest{
			Description: spec.Description,
			Amount:      formatAmount(spec.Amount),
			Deadline:    spec.Deadline.Unix(),
		})
	}

	resp := &createCampaignResponse{}
	api.decode(api.request(http.MethodPost, RouteCampaigns, token, request), http.StatusCreated, resp)
	return resp.EscrowID
}

func (api *apiTestEnv) campaign(escrowID string) *campaignResponse {
	resp := &campaignResponse{}
	api.decode(api.request(http.MethodGet, "/campaigns/"+escrowID, "", nil), http.StatusOK, resp)
	return resp
}

func (api *apiTestEnv) errorCode(rec *httptest.ResponseRecorder) int {
	resp := &restapi.HTTPErrorResponseEnvelope{}
	require.NoError(api.t, json.Unmarshal(rec.Body.Bytes(), resp))
	require.Equal(api.t, fmt.Sprintf("%d", rec.Code), resp.Error.Code)
	return rec.Code
}

func TestAuthToken(t *testing.T) {
	api := newAPITestEnv(t, false)

	token := api.token(api.Wallet1)
	require.NotEmpty(t, token)

	// signature of another message
	privateKey, publicKey := api.Wallet1.KeyPair()
	timestamp := api.Now().Unix()
	rec := api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{
		PublicKey: hex.EncodeToString(publicKey),
		Signature: hex.EncodeToString(ed25519.Sign(privateKey, restapi.AuthMessage(iotago.PrefixTestnet, timestamp+1))),
		Timestamp: timestamp,
	})
	require.Equal(t, http.StatusForbidden, api.errorCode(rec))

	// outdated timestamp
	timestamp = api.Now().Add(-time.Hour).Unix()
	rec = api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{
		PublicKey: hex.EncodeToString(publicKey),
		Signature: hex.EncodeToString(ed25519.Sign(privateKey, restapi.AuthMessage(iotago.PrefixTestnet, timestamp))),
		Timestamp: timestamp,
	})
	require.Equal(t, http.StatusForbidden, api.errorCode(rec))

	// tokens without signature are disabled
	rec = api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{Address: api.Wallet1.Bech32()})
	require.Equal(t, http.StatusForbidden, api.errorCode(rec))

	rec = api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{})
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))
}

func TestInsecureAddressTokens(t *testing.T) {
	api := newAPITestEnv(t, true)

	resp := &tokenResponse{}
	api.decode(api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{Address: api.Wallet2.Bech32()}), http.StatusOK, resp)
	require.Equal(t, api.Wallet2.Bech32(), resp.Address)

	rec := api.request(http.MethodPost, RouteAuthToken, "", &tokenRequest{Address: "invalid"})
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newAPITestEnv(t, false)

	escrowID := api.createCampaign(api.token(api.Creator), 2000, 1000)

	rec := api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", "", &contributionRequest{Amount: "100"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", "invalid", &contributionRequest{Amount: "100"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// public routes
	require.Equal(t, "funding", api.campaign(escrowID).Status)
}

func TestCampaignLifecycle(t *testing.T) {
	api := newAPITestEnv(t, false)

	creatorToken := api.token(api.Creator)
	recipientToken := api.token(api.Recipient)
	token1 := api.token(api.Wallet1)
	token2 := api.token(api.Wallet2)

	escrowID := api.createCampaign(creatorToken, 1500, 600, 400)

	c := api.campaign(escrowID)
	require.Equal(t, api.Creator.Bech32(), c.Creator)
	require.Equal(t, api.Recipient.Bech32(), c.Recipient)
	require.Equal(t, "1000", c.SoftCap)
	require.Equal(t, "1500", c.HardCap)
	require.Len(t, c.Milestones, 2)
	require.Equal(t, int64(3600), c.VotingPeriod)

	contribution := &contributionResponse{}
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", token1, &contributionRequest{Amount: "700"}), http.StatusOK, contribution)
	require.Equal(t, "700", contribution.Accepted)
	require.Equal(t, "funding", contribution.Status)

	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", token2, &contributionRequest{Amount: "1000"}), http.StatusOK, contribution)
	require.Equal(t, "800", contribution.Accepted)
	require.Equal(t, "200", contribution.Returned)
	require.Equal(t, "funded", contribution.Status)

	// the hard cap is reached
	rec := api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", token1, &contributionRequest{Amount: "1"})
	require.Equal(t, http.StatusConflict, api.errorCode(rec))

	// only the recipient may submit
	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/submit", token1, nil)
	require.Equal(t, http.StatusForbidden, api.errorCode(rec))

	milestone := &milestoneResponse{}
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/submit", recipientToken, nil), http.StatusOK, milestone)
	require.Equal(t, "voting", milestone.Status)
	require.True(t, milestone.VotingOpen)

	approve := true
	resolution := &resolutionResponse{}
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/votes", token1, &voteRequest{Approve: &approve}), http.StatusOK, resolution)
	require.Equal(t, escrow.ResolutionUndecided.String(), resolution.Resolution)

	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/votes", token1, &voteRequest{Approve: &approve})
	require.Equal(t, http.StatusConflict, api.errorCode(rec))

	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/votes", token2, &voteRequest{})
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))

	// the voting window is still open
	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/finalize", token2, nil)
	require.Equal(t, http.StatusConflict, api.errorCode(rec))

	api.AdvanceTime(time.Hour)

	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/0/finalize", token2, nil), http.StatusOK, resolution)
	require.Equal(t, escrow.ResolutionApproved.String(), resolution.Resolution)
	require.Equal(t, uint64(600), api.Journal().Received(api.Recipient.Address()))

	c = api.campaign(escrowID)
	require.Equal(t, "600", c.TotalReleased)
	require.Equal(t, "900", c.Balance)
	require.Equal(t, uint16(1), c.CurrentMilestone)
	require.Equal(t, "approved", c.Milestones[0].Status)

	// reject the second milestone
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/1/submit", recipientToken, nil), http.StatusOK, milestone)

	reject := false
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/1/votes", token2, &voteRequest{Approve: &reject}), http.StatusOK, resolution)
	require.Equal(t, escrow.ResolutionUndecided.String(), resolution.Resolution)

	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/milestones/1/votes", token1, &voteRequest{Approve: &reject}), http.StatusOK, resolution)
	require.Equal(t, escrow.ResolutionRejected.String(), resolution.Resolution)

	info := &contributorResponse{}
	api.decode(api.request(http.MethodGet, "/campaigns/"+escrowID+"/contributors/"+api.Wallet1.Bech32(), "", nil), http.StatusOK, info)
	require.Equal(t, "700", info.Contributed)
	require.Equal(t, "420", info.Refundable)
	require.Equal(t, []uint16{0, 1}, info.VotedOnMilestones)

	refund := &refundResponse{}
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/refunds", token1, nil), http.StatusOK, refund)
	require.Equal(t, "420", refund.Amount)

	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/refunds", token1, nil)
	require.Equal(t, http.StatusConflict, api.errorCode(rec))

	// only contributors can claim
	rec = api.request(http.MethodPost, "/campaigns/"+escrowID+"/refunds", creatorToken, nil)
	require.Equal(t, http.StatusForbidden, api.errorCode(rec))

	api.AssertInvariants(api.Escrow(mustEscrowID(t, escrowID)))
}

func TestEmergencyCancellation(t *testing.T) {
	api := newAPITestEnv(t, false)

	token1 := api.token(api.Wallet1)
	token2 := api.token(api.Wallet2)

	escrowID := api.createCampaign(api.token(api.Creator), 1000, 1000)

	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", token1, &contributionRequest{Amount: "800"}), http.StatusOK, nil)
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/contributions", token2, &contributionRequest{Amount: "200"}), http.StatusOK, nil)

	emergency := &emergencyResponse{}
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/emergency", token2, nil), http.StatusOK, emergency)
	require.False(t, emergency.Cancelled)

	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/emergency", token1, nil), http.StatusOK, emergency)
	require.True(t, emergency.Cancelled)

	require.Equal(t, "cancelled", api.campaign(escrowID).Status)

	refund := &refundResponse{}
	api.decode(api.request(http.MethodPost, "/campaigns/"+escrowID+"/refunds", token1, nil), http.StatusOK, refund)
	require.Equal(t, "800", refund.Amount)
}

func TestCampaignListing(t *testing.T) {
	api := newAPITestEnv(t, false)

	creatorToken := api.token(api.Creator)
	otherToken := api.token(api.Wallet3)

	var created []string
	for i := 0; i < 3; i++ {
		created = append(created, api.createCampaign(creatorToken, 2000, 1000+uint64(i)))
		api.AdvanceTime(time.Second)
	}
	other := api.createCampaign(otherToken, 2000, 500)

	// the page size is limited to two results
	page := &campaignsResponse{}
	api.decode(api.request(http.MethodGet, "/campaigns?creator="+api.Creator.Bech32(), "", nil), http.StatusOK, page)
	require.Len(t, page.Campaigns, 2)
	require.Equal(t, created[0], page.Campaigns[0].EscrowID)
	require.Equal(t, created[1], page.Campaigns[1].EscrowID)
	require.NotEmpty(t, page.Cursor)

	api.decode(api.request(http.MethodGet, "/campaigns?creator="+api.Creator.Bech32()+"&cursor="+page.Cursor, "", nil), http.StatusOK, page)
	require.Len(t, page.Campaigns, 1)
	require.Equal(t, created[2], page.Campaigns[0].EscrowID)
	require.Empty(t, page.Cursor)

	api.decode(api.request(http.MethodGet, "/campaigns?creator="+api.Wallet3.Bech32(), "", nil), http.StatusOK, page)
	require.Len(t, page.Campaigns, 1)
	require.Equal(t, other, page.Campaigns[0].EscrowID)
	require.Equal(t, api.Wallet3.Bech32(), page.Campaigns[0].Creator)

	rec := api.request(http.MethodGet, "/campaigns?creator=invalid", "", nil)
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))
}

func TestCreateCampaignValidation(t *testing.T) {
	api := newAPITestEnv(t, false)
	token := api.token(api.Creator)

	params := api.DefaultParams(2000, 1000)
	request := &createCampaignRequest{
		Recipient:       api.Recipient.Bech32(),
		SoftCap:         "999",
		HardCap:         "2000",
		FundingDeadline: params.FundingDeadline.Unix(),
		VotingPeriod:    3600,
		Milestones: []*createMilestoneRequest{
			{Description: "A", Amount: "1000", Deadline: params.Milestones[0].Deadline.Unix()},
		},
	}

	rec := api.request(http.MethodPost, RouteCampaigns, token, request)
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))

	request.SoftCap = "1000"
	request.Recipient = "invalid"
	rec = api.request(http.MethodPost, RouteCampaigns, token, request)
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))

	request.Recipient = api.Recipient.Bech32()
	request.FundingDeadline = api.Now().Add(-time.Hour).Unix()
	rec = api.request(http.MethodPost, RouteCampaigns, token, request)
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))
}

func TestUnknownCampaign(t *testing.T) {
	api := newAPITestEnv(t, false)

	rec := api.request(http.MethodGet, "/campaigns/"+escrow.EscrowID{0x01}.ToHex(), "", nil)
	require.Equal(t, http.StatusNotFound, api.errorCode(rec))

	rec = api.request(http.MethodGet, "/campaigns/xyz", "", nil)
	require.Equal(t, http.StatusBadRequest, api.errorCode(rec))
}

func mustEscrowID(t *testing.T, escrowIDHex string) escrow.EscrowID {
	escrowID, err := escrow.EscrowIDFromHex(escrowIDHex)
	require.NoError(t, err)
	return escrowID
}
