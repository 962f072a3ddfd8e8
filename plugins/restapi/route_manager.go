package restapi

import (
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/iotaledger/hive.go/syncutils"
)

// RestRouteManager keeps track of the API routes that plugins registered.
type RestRouteManager struct {
	syncutils.RWMutex
	routes []string
	echo   *echo.Echo
}

func newRestRouteManager(e *echo.Echo) *RestRouteManager {
	return &RestRouteManager{
		routes: []string{},
		echo:   e,
	}
}

// Routes returns the registered routes in alphabetical order.
func (p *RestRouteManager) Routes() []string {
	p.RLock()
	defer p.RUnlock()

	routes := make([]string, len(p.routes))
	copy(routes, p.routes)
	sort.Strings(routes)
	return routes
}

// AddRoute adds a route to the routes endpoint and returns the group for this route.
func (p *RestRouteManager) AddRoute(route string) *echo.Group {
	p.Lock()
	defer p.Unlock()

	found := false
	for _, existing := range p.routes {
		if existing == route {
			found = true
			break
		}
	}
	if !found {
		p.routes = append(p.routes, route)
	}
	return p.echo.Group("/api/" + route)
}
