/*
Package version provides build information for reco-hub.

Values are set via ldflags during build:

	go build -ldflags "-X github.com/khanglvm/reco-hub/internal/version.Version=v0.3.0"

Unset values report a "dev" build.
*/
package version

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build information in a serializable form.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build information.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// GetVersion returns the one-line version shown by --version.
func GetVersion() string {
	return Get().String()
}

func (i Info) String() string {
	if i.Version == "dev" {
		return "dev (development build)"
	}
	return i.Version + " (commit: " + i.Commit + ", built: " + i.Date + ")"
}
