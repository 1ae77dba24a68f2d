// Package buildinfo reports the version of the genback binary.
//
// Release builds inject values with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/genback/internal/infra/buildinfo.Version=v1.2.0 \
//	  -X github.com/yndnr/genback/internal/infra/buildinfo.Commit=abc123"
//
// Without ldflags the module version and VCS revision recorded by the Go
// toolchain are used.
package buildinfo
