package escrowapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

func contribute(c echo.Context, caller iotago.Ed25519Address) (*contributionResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	request := &contributionRequest{}
	if err := c.Bind(request); err != nil {
		return nil, errors.WithMessagef(restapi.ErrInvalidParameter, "invalid request, error: %s", err)
	}

	amount, err := restapi.ParseAmount(request.Amount)
	if err != nil {
		return nil, err
	}

	result, err := e.Contribute(c.Request().Context(), caller, amount)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return &contributionResponse{
		Accepted:    formatAmount(result.Accepted),
		Returned:    formatAmount(result.Returned),
		TotalRaised: formatAmount(result.TotalRaised),
		Status:      result.Status.String(),
	}, nil
}

func claimRefund(c echo.Context, caller iotago.Ed25519Address) (*refundResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	amount, err := e.ClaimRefund(c.Request().Context(), caller)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return &refundResponse{
		Amount: formatAmount(amount),
	}, nil
}

func submitMilestone(c echo.Context, caller iotago.Ed25519Address) (*milestoneResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	index, err := restapi.ParseMilestoneIndexParam(c)
	if err != nil {
		return nil, err
	}

	if err := e.SubmitMilestone(c.Request().Context(), caller, index); err != nil {
		return nil, restapi.EscrowError(err)
	}

	ms, err := e.View().Milestone(index)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return newMilestoneResponse(ms, ms.IsVotingOpen(deps.EscrowManager.Now())), nil
}

func vote(c echo.Context, caller iotago.Ed25519Address) (*resolutionResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	index, err := restapi.ParseMilestoneIndexParam(c)
	if err != nil {
		return nil, err
	}

	request := &voteRequest{}
	if err := c.Bind(request); err != nil {
		return nil, errors.WithMessagef(restapi.ErrInvalidParameter, "invalid request, error: %s", err)
	}

	if request.Approve == nil {
		return nil, errors.WithMessage(restapi.ErrInvalidParameter, "approve not specified")
	}

	resolution, err := e.Vote(c.Request().Context(), caller, index, *request.Approve)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return &resolutionResponse{
		Resolution: resolution.String(),
	}, nil
}

func finalizeMilestone(c echo.Context) (*resolutionResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	index, err := restapi.ParseMilestoneIndexParam(c)
	if err != nil {
		return nil, err
	}

	resolution, err := e.FinalizeMilestone(c.Request().Context(), index)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return &resolutionResponse{
		Resolution: resolution.String(),
	}, nil
}

func voteEmergency(c echo.Context, caller iotago.Ed25519Address) (*emergencyResponse, error) {

	e, err := escrowByIDParam(c)
	if err != nil {
		return nil, err
	}

	cancelled, err := e.VoteEmergency(c.Request().Context(), caller)
	if err != nil {
		return nil, restapi.EscrowError(err)
	}

	return &emergencyResponse{
		Cancelled: cancelled,
	}, nil
}
