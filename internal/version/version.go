package version

import "fmt"

// Version is the semver of current release.
var Version = "0.1.0"

// DevVersion is the head of development.
var DevVersion = "0.1.0"

func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return fmt.Sprintf("%s-%s", DevVersion, mode)
	}
	return Version
}
