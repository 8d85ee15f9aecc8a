package build

import "fmt"

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// FullVersion returns "Version+Commit", e.g. "1.0.0+abc123".
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent is the default User-Agent sent to the portals.
func UserAgent() string {
	return fmt.Sprintf("vnlaw-crawler/%s (+https://github.com/rohmanhakim/vnlaw-crawler)", Version)
}
