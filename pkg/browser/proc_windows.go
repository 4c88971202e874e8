//go:build windows

package browser

import "syscall"

// CREATE_NEW_PROCESS_GROUP | DETACHED_PROCESS
const detachedCreationFlags = 0x00000200 | 0x00000008

// detachedProcAttr detaches the launched browser from this host's console
// so it survives the host exiting.
func detachedProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: detachedCreationFlags}
}
