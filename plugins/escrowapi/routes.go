package escrowapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gohornet/escrow/pkg/restapi"
	iotago "github.com/iotaledger/iota.go/v3"
)

const (
	// RouteAuthToken is the route to request a JWT for an address.
	// POST issues a token for the address of the signing key.
	RouteAuthToken = "/auth/token"

	// RouteCampaigns is the route to create and list campaigns.
	// GET returns the campaigns (optional query parameters: "creator", "recipient", "pageSize", "cursor").
	// POST creates a new campaign.
	RouteCampaigns = "/campaigns"

	// RouteCampaign is the route to get the state of a campaign.
	RouteCampaign = "/campaigns/:" + restapi.ParameterEscrowID

	// RouteCampaignContributor is the route to get the ledger entry of a contributor.
	RouteCampaignContributor = "/campaigns/:" + restapi.ParameterEscrowID + "/contributors/:" + restapi.ParameterAddress

	// RouteCampaignContributions is the route to contribute to a campaign.
	RouteCampaignContributions = "/campaigns/:" + restapi.ParameterEscrowID + "/contributions"

	// RouteCampaignRefunds is the route to claim a refund.
	RouteCampaignRefunds = "/campaigns/:" + restapi.ParameterEscrowID + "/refunds"

	// RouteMilestoneSubmit is the route for the recipient to submit a milestone for voting.
	RouteMilestoneSubmit = "/campaigns/:" + restapi.ParameterEscrowID + "/milestones/:" + restapi.ParameterMilestoneIndex + "/submit"

	// RouteMilestoneVotes is the route to vote on a milestone.
	RouteMilestoneVotes = "/campaigns/:" + restapi.ParameterEscrowID + "/milestones/:" + restapi.ParameterMilestoneIndex + "/votes"

	// RouteMilestoneFinalize is the route to finalize a milestone after its voting window closed.
	RouteMilestoneFinalize = "/campaigns/:" + restapi.ParameterEscrowID + "/milestones/:" + restapi.ParameterMilestoneIndex + "/finalize"

	// RouteCampaignEmergency is the route to vote for the cancellation of a campaign.
	RouteCampaignEmergency = "/campaigns/:" + restapi.ParameterEscrowID + "/emergency"
)

// authenticated wraps a handler that needs the caller address from the JWT.
func authenticated(handler func(c echo.Context, caller iotago.Ed25519Address) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		caller, err := callerFromContext(c)
		if err != nil {
			return err
		}
		return handler(c, caller)
	}
}

func setupRoutes(routeGroup *echo.Group) {

	jwtMiddleware := deps.JWTAuth.Middleware(func(c echo.Context) bool { return false }, nil)

	routeGroup.POST(RouteAuthToken, func(c echo.Context) error {
		resp, err := issueToken(c)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteCampaigns, func(c echo.Context) error {
		resp, err := campaigns(c)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.POST(RouteCampaigns, authenticated(func(c echo.Context, caller iotago.Ed25519Address) error {
		resp, err := createCampaign(c, caller)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusCreated, resp)
	}), jwtMiddleware)

	routeGroup.GET(RouteCampaign, func(c echo.Context) error {
		resp, err := campaign(c)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.GET(RouteCampaignContributor, func(c echo.Context) error {
		resp, err := contributor(c)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	})

	routeGroup.POST(RouteCampaignContributions, authenticated(func(c echo.Context, caller iotago.Ed25519Address) error {
		resp, err := contribute(c, caller)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	}), jwtMiddleware)

	routeGroup.POST(RouteCampaignRefunds, authenticated(func(c echo.Context, caller iotago.Ed25519Address) error {
		resp, err := claimRefund(c, caller)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	}), jwtMiddleware)

	routeGroup.POST(RouteMilestoneSubmit, authenticated(func(c echo.Context, caller iotago.Ed25519Address) error {
		resp, err := submitMilestone(c, caller)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	}), jwtMiddleware)

	routeGroup.POST(RouteMilestoneVotes, authenticated(func(c echo.Context, caller iotago.Ed25519Address) error {
		resp, err := vote(c, caller)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	}), jwtMiddleware)

	// anyone may finalize, the caller only has to be known
	routeGroup.POST(RouteMilestoneFinalize, authenticated(func(c echo.Context, _ iotago.Ed25519Address) error {
		resp, err := finalizeMilestone(c)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	}), jwtMiddleware)

	routeGroup.POST(RouteCampaignEmergency, authenticated(func(c echo.Context, caller iotago.Ed25519Address) error {
		resp, err := voteEmergency(c, caller)
		if err != nil {
			return err
		}
		return restapi.JSONResponse(c, http.StatusOK, resp)
	}), jwtMiddleware)
}
