// Package version carries the build version, set at link time:
//
//	go build -ldflags "-X fusionsite/internal/version.Version=v1.2.0" ./cmd/fusionsite
package version

var Version = "dev"
