// Package auth gates every API request: API key roles, optional IP
// whitelisting and per-caller rate limiting.
package auth

import (
	"github.com/nft-socials/nft-socials-app-sub000/pkg/config"
)

// Role represents the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleFrontend
	RoleBackend
)

// SecConfig carries the security settings the gateway middleware needs.
// Kept as a flat value type so the limiter pool and middleware can share
// it without reaching back into config.
type SecConfig struct {
	RPS          float64
	Burst        int
	IPWhitelist  []string
	BackendKeys  map[string]struct{}
	FrontendKeys map[string]struct{}
	AllowUnauth  bool
}

// FromConfig builds a SecConfig from the loaded server configuration.
func FromConfig(c *config.Config) SecConfig {
	sc := SecConfig{
		RPS:          c.Security.RateLimit.RPS,
		Burst:        c.Security.RateLimit.Burst,
		IPWhitelist:  append([]string(nil), c.Security.IPWhitelist...),
		BackendKeys:  make(map[string]struct{}),
		FrontendKeys: make(map[string]struct{}),
		AllowUnauth:  c.Security.APIKeys.AllowUnauth,
	}
	for _, k := range c.Security.APIKeys.Backend {
		sc.BackendKeys[k] = struct{}{}
	}
	for _, k := range c.Security.APIKeys.Frontend {
		sc.FrontendKeys[k] = struct{}{}
	}
	return sc
}
