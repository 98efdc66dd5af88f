package ratelimit

import (
	"slices"
	"strings"
)

// MatchEndpoint finds the configuration for a request.
// Unlimited paths match any method and get a zero limit. Exact matches win over
// prefix matches; a configured path ending in "/" matches everything below it.
func MatchEndpoint(path, method string, configs []EndpointConfig, unlimited []string) *EndpointConfig {
	if slices.Contains(unlimited, path) {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}

	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}

	return nil
}
