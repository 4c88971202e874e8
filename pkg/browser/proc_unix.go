//go:build !windows

package browser

import "syscall"

// detachedProcAttr puts the launched browser in its own session so it
// survives this host exiting.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
