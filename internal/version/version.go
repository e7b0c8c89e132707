// Package version holds the build version of waex.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/VoxDroid/waex/internal/version.Version=v0.2.0"
var Version = "v0.1.0-dev"
