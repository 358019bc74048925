// Package version reports the build of the streamcast binary.
//
// Release builds stamp the variables via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/streamcast/version.Version=1.2.0" ./cmd/streamcast
//
// Untagged builds fall back to the VCS settings embedded by the Go toolchain.
package version
