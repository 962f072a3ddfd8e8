package escrowapi

import (
	"go.uber.org/dig"

	"github.com/gohornet/escrow/pkg/jwt"
	"github.com/gohornet/escrow/pkg/model/escrow"
	"github.com/gohornet/escrow/pkg/model/registry"
	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/plugins/restapi"
)

const (
	// APIRoute is the route for accessing the escrow API.
	APIRoute = "escrow/v1"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.Enabled,
		Pluggable: node.Pluggable{
			Name:      "EscrowAPI",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Configure: configure,
		},
	}
}

var (
	Plugin *node.Plugin
	deps   dependencies
)

type dependencies struct {
	dig.In
	EscrowManager         *escrow.Manager
	Registry              *registry.Registry
	JWTAuth               *jwt.Auth
	RestRouteManager      *restapi.RestRouteManager
	MaxResults            int  `name:"restAPILimitsMaxResults"`
	InsecureAddressTokens bool `name:"restAPIInsecureAddressTokens"`
}

func configure() {
	routeGroup := deps.RestRouteManager.AddRoute(APIRoute)
	setupRoutes(routeGroup)
}
