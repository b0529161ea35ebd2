// Package misc keeps build time values injected by the linker.
package misc

// Overwritten with -ldflags "-X cardx/misc.version=... -X cardx/misc.gitHash=..."
var (
	appName = "cardx"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
