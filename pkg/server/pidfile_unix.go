//go:build !windows

package server

import "golang.org/x/sys/unix"

// isProcessRunning sends signal 0 to check that pid exists.
func isProcessRunning(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}

func terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}
