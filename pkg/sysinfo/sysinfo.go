package sysinfo

import (
	"runtime"
)

var SysUnknown = SysInfo{
	Name:    runtime.GOOS,
	Release: "unknown",
	Version: "unknown",
}

// SysInfo describes the host operating system.
type SysInfo struct {
	Name    string // runtime.GOOS
	Release string // kernel release, e.g. "6.8.0-45-generic"
	Version string // kernel build string
}
