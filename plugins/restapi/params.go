package restapi

import (
	"time"

	flag "github.com/spf13/pflag"

	"github.com/gohornet/escrow/pkg/node"
)

const (
	// the bind address on which the REST API listens on
	CfgRestAPIBindAddress = "restAPI.bindAddress"
	// the secret used to sign the JWT tokens, a random secret is used if empty
	CfgRestAPIJWTAuthSecret = "restAPI.jwtAuth.secret"
	// how long a JWT token is valid
	CfgRestAPIJWTAuthSessionTimeout = "restAPI.jwtAuth.sessionTimeout"
	// whether tokens may be issued for an address without a signature (development only)
	CfgRestAPIJWTAuthInsecureAddressTokens = "restAPI.jwtAuth.insecureAddressTokens"
	// the maximum number of characters that the body of an API call may contain
	CfgRestAPILimitsMaxBodyLength = "restAPI.limits.maxBodyLength"
	// the maximum number of results that may be returned by an endpoint
	CfgRestAPILimitsMaxResults = "restAPI.limits.maxResults"
	// the allowed requests per second per remote address, 0 disables the limit
	CfgRestAPILimitsRateLimit = "restAPI.limits.rateLimit"
	// the allowed burst of requests per remote address
	CfgRestAPILimitsRateBurst = "restAPI.limits.rateBurst"
	// whether the debug logging for requests should be enabled
	CfgRestAPIDebugRequestLoggerEnabled = "restAPI.debugRequestLoggerEnabled"
)

var params = &node.PluginParams{
	Params: map[string]*flag.FlagSet{
		"nodeConfig": func() *flag.FlagSet {
			fs := flag.NewFlagSet("", flag.ContinueOnError)
			fs.String(CfgRestAPIBindAddress, "0.0.0.0:14265", "the bind address on which the REST API listens on")
			fs.String(CfgRestAPIJWTAuthSecret, "", "the secret used to sign the JWT tokens, a random secret is used if empty")
			fs.Duration(CfgRestAPIJWTAuthSessionTimeout, 24*time.Hour, "how long a JWT token is valid")
			fs.Bool(CfgRestAPIJWTAuthInsecureAddressTokens, false, "whether tokens may be issued for an address without a signature (development only)")
			fs.String(CfgRestAPILimitsMaxBodyLength, "1M", "the maximum number of characters that the body of an API call may contain")
			fs.Int(CfgRestAPILimitsMaxResults, 1000, "the maximum number of results that may be returned by an endpoint")
			fs.Float64(CfgRestAPILimitsRateLimit, 20, "the allowed requests per second per remote address, 0 disables the limit")
			fs.Int(CfgRestAPILimitsRateBurst, 40, "the allowed burst of requests per remote address")
			fs.Bool(CfgRestAPIDebugRequestLoggerEnabled, false, "whether the debug logging for requests should be enabled")
			return fs
		}(),
	},
	Masked: []string{CfgRestAPIJWTAuthSecret},
}
