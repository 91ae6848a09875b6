// Package platform maps the running OS and architecture onto the names used
// by ClickHouse release artifacts, and gathers distro detail for log lines.
package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Info describes the platform an artifact is selected for.
type Info struct {
	OS   string // release naming: "macos" or "linux"
	Arch string // release naming: "aarch64" or "x86_64"

	// Distro holds Linux distribution detail when detection succeeds,
	// e.g. "ubuntu 24.04". Informational only.
	Distro string
}

// UnsupportedError reports an OS/arch combination with no published binary.
type UnsupportedError struct {
	OS   string
	Arch string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported platform: %s/%s", e.OS, e.Arch)
}

// Detect resolves the current platform. It fails before any network access
// happens so an unsupported host never starts a download.
func Detect(ctx context.Context) (Info, error) {
	info, err := mapPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return Info{}, err
	}

	if runtime.GOOS == "linux" {
		// Best effort; distro detail only decorates logs.
		if platform, _, ver, err := host.PlatformInformationWithContext(ctx); err == nil && platform != "" {
			info.Distro = platform
			if ver != "" {
				info.Distro += " " + ver
			}
		}
	}

	return info, nil
}

// mapPlatform translates Go GOOS/GOARCH values into release artifact names.
func mapPlatform(goos, goarch string) (Info, error) {
	var info Info

	switch goos {
	case "darwin":
		info.OS = "macos"
	case "linux":
		info.OS = "linux"
	default:
		return Info{}, &UnsupportedError{OS: goos, Arch: goarch}
	}

	switch goarch {
	case "amd64":
		info.Arch = "x86_64"
	case "arm64":
		info.Arch = "aarch64"
	default:
		return Info{}, &UnsupportedError{OS: goos, Arch: goarch}
	}

	return info, nil
}
