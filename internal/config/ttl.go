package config

import (
	"regexp"
	"strconv"
)

// Default token lifetimes, in seconds, used when a TTL string is unparseable.
const (
	DefaultAccessTTLSeconds  = 900    // 15 minutes
	DefaultRefreshTTLSeconds = 604800 // 7 days
)

var (
	allDigits = regexp.MustCompile(`^\d+$`)
	ttlExpr   = regexp.MustCompile(`^(\d+)([smhd])$`)
)

// ParseTTLSeconds interprets a TTL configuration string. A bare number is
// taken as seconds; a number with an s/m/h/d suffix is scaled accordingly.
// Anything else falls back to def.
func ParseTTLSeconds(s string, def int) int {
	if allDigits.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return def
		}
		return n
	}
	m := ttlExpr.FindStringSubmatch(s)
	if m == nil {
		return def
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return def
	}
	switch m[2] {
	case "s":
		return n
	case "m":
		return n * 60
	case "h":
		return n * 3600
	case "d":
		return n * 86400
	}
	return def
}
