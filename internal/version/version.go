package version

// Set at build time via -ldflags "-X github.com/atbphosting/clumsyloader/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent is the default User-Agent sent to the panel
func UserAgent() string {
	if Version == "dev" {
		return "ClumsyLoader/0.1"
	}
	return "ClumsyLoader/" + Version
}

// Full returns a detailed version string including commit and date
func Full() string {
	return Version + " (" + Commit + ") built " + Date
}
