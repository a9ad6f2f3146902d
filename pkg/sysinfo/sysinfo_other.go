//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package sysinfo

import "runtime"

func Stat() (*SysInfo, error) {
	return &SysInfo{
		Name:    runtime.GOOS,
		Release: "unknown",
		Version: "unknown",
	}, nil
}
