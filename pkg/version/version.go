package version

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/candlecourse/pkg/version.Version=v1.2.3"
var Version = "v0.3.0"

// Commit is the VCS revision, set at build time alongside Version.
var Commit = ""

// String formats the version for the version command.
func String() string {
	if Commit == "" {
		return "candlecourse " + Version
	}
	return "candlecourse " + Version + " (" + Commit + ")"
}
