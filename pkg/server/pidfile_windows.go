//go:build windows

package server

import "os"

// isProcessRunning is best-effort on Windows: FindProcess fails only for
// processes that no longer exist.
func isProcessRunning(pid int) bool {
	_, err := os.FindProcess(pid)
	return err == nil
}

func terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
