package escrowapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/registry"
	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

func formatAmount(amount uint64) string {
	return strconv.FormatUint(amount, 10)
}

func escrowByIDParam(c echo.Context) (*escrow.Escrow, error) {
	escrowID, err := restapi.ParseEscrowIDParam(c)
	if err != nil {
		return nil, err
	}

	e, err := deps.EscrowManager.Escrow(escrowID)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}
	return e, nil
}

func createCampaign(c echo.Context, creator iotago.Ed25519Address) (*createCampaignResponse, error) {

	request := &createCampaignRequest{}
	if err := c.Bind(request); err != nil {
		return nil, errors.WithMessagef(restapi.ErrInvalidParameter, "invalid request, error: %s", err)
	}

	recipient, err := restapi.ParseBech32Address(request.Recipient, deps.EscrowManager.Bech32HRP())
	if err != nil {
		return nil, err
	}

	softCap, err := restapi.ParseAmount(request.SoftCap)
	if err != nil {
		return nil, err
	}

	hardCap, err := restapi.ParseAmount(request.HardCap)
	if err != nil {
		return nil, err
	}

	req := &registry.CreateRequest{
		Recipient:       recipient,
		SoftCap:         softCap,
		HardCap:         hardCap,
		FundingDeadline: time.Unix(request.FundingDeadline, 0),
		VotingPeriod:    time.Duration(request.VotingPeriod) * time.Second,
	}

	for _, ms := range request.Milestones {
		if ms == nil {
			return nil, errors.WithMessage(restapi.ErrInvalidParameter, "invalid milestone")
		}

		amount, err := restapi.ParseAmount(ms.Amount)
		if err != nil {
			return nil, err
		}

		req.Descriptions = append(req.Descriptions, ms.Description)
		req.Amounts = append(req.Amounts, amount)
		req.Deadlines = append(req.Deadlines, time.Unix(ms.Deadline, 0))
	}

	escrowID, err := deps.Registry.CreateCampaign(creator, req)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return &createCampaignResponse{
		EscrowID: escrowID.ToHex(),
	}, nil
}

func campaigns(c echo.Context) (*campaignsResponse, error) {

	hrp := deps.EscrowManager.Bech32HRP()

	var filters []registry.FilterOption

	creator, err := restapi.ParseBech32AddressQueryParam(c, restapi.QueryParameterCreator, hrp)
	if err != nil {
		return nil, err
	}
	if creator != nil {
		filters = append(filters, registry.FilterCreator(*creator))
	}

	recipient, err := restapi.ParseBech32AddressQueryParam(c, restapi.QueryParameterRecipient, hrp)
	if err != nil {
		return nil, err
	}
	if recipient != nil {
		filters = append(filters, registry.FilterRecipient(*recipient))
	}

	cursor, err := restapi.ParseUint64QueryParam(c, restapi.QueryParameterCursor, 0)
	if err != nil {
		return nil, err
	}
	if cursor > 0 {
		filters = append(filters, registry.FilterAfterSequence(cursor))
	}

	pageSize, err := restapi.ParseUint64QueryParam(c, restapi.QueryParameterPageSize, uint64(deps.MaxResults))
	if err != nil {
		return nil, err
	}
	if pageSize == 0 {
		pageSize = uint64(deps.MaxResults)
	}
	filters = append(filters, registry.FilterMaxResults(int(pageSize)))

	results, err := deps.Registry.Campaigns(filters...)
	if err != nil {
		return nil, errors.WithMessagef(restapi.ErrInternalServerError, "reading campaigns failed, error: %s", err)
	}

	resp := &campaignsResponse{
		Campaigns: make([]*campaignEntry, len(results)),
	}
	for i, campaign := range results {
		resp.Campaigns[i] = &campaignEntry{
			Sequence:  campaign.Sequence,
			EscrowID:  campaign.EscrowID.ToHex(),
			Creator:   bech32(campaign.Creator),
			Recipient: bech32(campaign.Recipient),
			CreatedAt: campaign.CreatedAt.Unix(),
		}
	}

	if len(results) > 0 && uint64(len(results)) == pageSize {
		resp.Cursor = strconv.FormatUint(results[len(results)-1].Sequence, 10)
	}

	return resp, nil
}

func campaign(c echo.Context) (*campaignResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	now := deps.EscrowManager.Now()
	view := e.View()

	resp := &campaignResponse{
		EscrowID:         view.EscrowID.ToHex(),
		Creator:          bech32(view.Creator),
		Recipient:        bech32(view.Params.Recipient),
		CreatedAt:        view.CreatedAt.Unix(),
		Status:           view.Status(now).String(),
		SoftCap:          formatAmount(view.Params.SoftCap),
		HardCap:          formatAmount(view.Params.HardCap),
		FundingDeadline:  view.Params.FundingDeadline.Unix(),
		VotingPeriod:     int64(view.Params.VotingPeriod / time.Second),
		TotalRaised:      formatAmount(view.TotalRaised),
		TotalReleased:    formatAmount(view.TotalReleased),
		TotalRefunded:    formatAmount(view.TotalRefunded),
		Balance:          formatAmount(view.Balance()),
		ContributorCount: view.ContributorCount,
		CurrentMilestone: view.CurrentMilestone,
		EmergencyWeight:  formatAmount(view.EmergencyWeight),
		Milestones:       make([]*milestoneResponse, len(view.Milestones)),
	}

	for i, ms := range view.Milestones {
		resp.Milestones[i] = newMilestoneResponse(ms, ms.IsVotingOpen(now))
	}

	return resp, nil
}

func contributor(c echo.Context) (*contributorResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	address, err := restapi.ParseBech32AddressParam(c, deps.EscrowManager.Bech32HRP())
	if err != nil {
		return nil, err
	}

	view := e.View()
	entry := view.Contribution(address)

	resp := &contributorResponse{
		Address:           bech32(address),
		Contributed:       formatAmount(entry.Contributed),
		RefundClaimed:     formatAmount(entry.RefundClaimed),
		Refundable:        formatAmount(view.RefundAmount(address, deps.EscrowManager.Now())),
		VotedEmergency:    view.HasVotedEmergency(address),
		VotedOnMilestones: []uint16{},
	}

	for _, ms := range view.Milestones {
		if view.HasVoted(ms.Index, address) {
			resp.VotedOnMilestones = append(resp.VotedOnMilestones, ms.Index)
		}
	}

	return resp, nil
}
