package restapi

import (
	"context"
	"crypto/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/dig"
	"golang.org/x/time/rate"

	"github.com/gohornet/escrow/core/app"
	"github.com/gohornet/escrow/pkg/jwt"
	"github.com/gohornet/escrow/pkg/metrics"
	"github.com/gohornet/escrow/pkg/node"
	"github.com/gohornet/escrow/pkg/restapi"
	"github.com/gohornet/escrow/pkg/shutdown"
	"github.com/iotaledger/hive.go/configuration"
)

func init() {
	Plugin = &node.Plugin{
		Status: node.Enabled,
		Pluggable: node.Pluggable{
			Name:      "RestAPI",
			DepsFunc:  func(cDeps dependencies) { deps = cDeps },
			Params:    params,
			Provide:   provide,
			Configure: configure,
			Run:       run,
		},
	}
}

var (
	Plugin *node.Plugin
	deps   dependencies
)

type dependencies struct {
	dig.In
	NodeConfig       *configuration.Configuration `name:"nodeConfig"`
	AppInfo          *app.AppInfo
	Echo             *echo.Echo
	RestAPIMetrics   *metrics.RestAPIMetrics
	RestRouteManager *RestRouteManager
}

func provide(c *dig.Container) {

	if err := c.Provide(func() *metrics.RestAPIMetrics {
		return &metrics.RestAPIMetrics{}
	}); err != nil {
		Plugin.LogPanic(err)
	}

	type cfgDeps struct {
		dig.In
		NodeConfig *configuration.Configuration `name:"nodeConfig"`
	}

	type cfgResult struct {
		dig.Out
		RestAPILimitsMaxResults      int  `name:"restAPILimitsMaxResults"`
		RestAPIInsecureAddressTokens bool `name:"restAPIInsecureAddressTokens"`
	}

	if err := c.Provide(func(deps cfgDeps) cfgResult {
		return cfgResult{
			RestAPILimitsMaxResults:      deps.NodeConfig.Int(CfgRestAPILimitsMaxResults),
			RestAPIInsecureAddressTokens: deps.NodeConfig.Bool(CfgRestAPIJWTAuthInsecureAddressTokens),
		}
	}); err != nil {
		Plugin.LogPanic(err)
	}

	if err := c.Provide(func(deps cfgDeps) *jwt.Auth {
		secret := []byte(deps.NodeConfig.String(CfgRestAPIJWTAuthSecret))
		if len(secret) == 0 {
			Plugin.LogWarnf("no JWT secret configured, issued tokens are only valid until the node restarts")
			secret = make([]byte, 32)
			if _, err := rand.Read(secret); err != nil {
				Plugin.LogPanicf("failed to generate JWT secret: %s", err)
			}
		}

		auth, err := jwt.NewAuth(app.Name, deps.NodeConfig.Duration(CfgRestAPIJWTAuthSessionTimeout), secret, nil)
		if err != nil {
			Plugin.LogPanicf("JWT auth initialization failed: %s", err)
		}
		return auth
	}); err != nil {
		Plugin.LogPanic(err)
	}

	if err := c.Provide(func(deps cfgDeps) *echo.Echo {
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.Recover())
		e.Use(middleware.CORS())
		e.Use(middleware.Gzip())
		e.Use(middleware.BodyLimit(deps.NodeConfig.String(CfgRestAPILimitsMaxBodyLength)))

		if limit := deps.NodeConfig.Float64(CfgRestAPILimitsRateLimit); limit > 0 {
			e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limit),
				Burst:     deps.NodeConfig.Int(CfgRestAPILimitsRateBurst),
				ExpiresIn: 3 * time.Minute,
			})))
		}

		return e
	}); err != nil {
		Plugin.LogPanic(err)
	}

	if err := c.Provide(func(e *echo.Echo) *RestRouteManager {
		return newRestRouteManager(e)
	}); err != nil {
		Plugin.LogPanic(err)
	}
}

func configure() {
	deps.Echo.HTTPErrorHandler = func(err error, c echo.Context) {
		Plugin.LogDebugf("HTTP request failed: %s", err)
		deps.RestAPIMetrics.HTTPRequestErrorCounter.Inc()

		restapi.ErrorHandler()(err, c)
	}

	if deps.NodeConfig.Bool(CfgRestAPIDebugRequestLoggerEnabled) {
		deps.Echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${remote_ip} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	setupRoutes()
}

func run() {

	Plugin.LogInfo("Starting REST-API server ...")

	if err := Plugin.Daemon().BackgroundWorker("REST-API server", func(ctx context.Context) {
		Plugin.LogInfo("Starting REST-API server ... done")

		bindAddr := deps.NodeConfig.String(CfgRestAPIBindAddress)

		go func() {
			Plugin.LogInfof("You can now access the API using: http://%s", bindAddr)
			if err := deps.Echo.Start(bindAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Plugin.LogWarnf("Stopped REST-API server due to an error (%s)", err)
			}
		}()

		<-ctx.Done()
		Plugin.LogInfo("Stopping REST-API server ...")

		shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := deps.Echo.Shutdown(shutdownCtx); err != nil {
			Plugin.LogWarnf("%s", err)
		}
		shutdownCtxCancel()
		Plugin.LogInfo("Stopping REST-API server ... done")
	}, shutdown.PriorityRestAPI); err != nil {
		Plugin.LogPanicf("failed to start worker: %s", err)
	}
}
