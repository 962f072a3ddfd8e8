package restapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gohornet/escrow/pkg/restapi"
)

const (
	nodeAPIHealthRoute = "/health"

	nodeAPIInfoRoute = "/api/info"

	nodeAPIRoutesRoute = "/api/routes"
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type RoutesResponse struct {
	Routes []string `json:"routes"`
}

func setupRoutes() {

	deps.Echo.GET(nodeAPIHealthRoute, func(c echo.Context) error {
		if Plugin.Daemon().IsStopped() {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	})

	deps.Echo.GET(nodeAPIInfoRoute, func(c echo.Context) error {
		return restapi.JSONResponse(c, http.StatusOK, &InfoResponse{
			Name:    deps.AppInfo.Name,
			Version: deps.AppInfo.Version,
		})
	})

	deps.Echo.GET(nodeAPIRoutesRoute, func(c echo.Context) error {
		return restapi.JSONResponse(c, http.StatusOK, &RoutesResponse{
			Routes: deps.RestRouteManager.Routes(),
		})
	})
}
