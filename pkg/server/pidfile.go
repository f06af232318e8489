package server

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
)

const (
	runDirName  = "pr-summarizer"
	pidFileName = "pr-summarizer.pid"
)

// PIDFilePath returns the absolute path to the server's PID file.
func PIDFilePath() string {
	return filepath.Join(runDir(), pidFileName)
}

// runDir returns the directory where runtime artifacts are stored.
func runDir() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, runDirName)
}

// EnsureRunDir ensures the runtime directory exists with mode 0700.
func EnsureRunDir() error {
	dir := runDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return prserrors.Wrapf(err, "failed to create runtime directory %q", dir)
	}
	return os.Chmod(dir, 0o700)
}

// WritePIDFile writes the current process ID to the PID file.
func WritePIDFile() error {
	if err := EnsureRunDir(); err != nil {
		return err
	}
	return os.WriteFile(PIDFilePath(), []byte(strconv.Itoa(os.Getpid())), 0o600)
}

// ReadPIDFile reads the process ID from the PID file.
func ReadPIDFile() (int, error) {
	data, err := os.ReadFile(PIDFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// RemovePIDFile removes the PID file.
func RemovePIDFile() error {
	return os.Remove(PIDFilePath())
}

// IsRunning reports whether the PID file names a live process.
func IsRunning() (int, bool) {
	pid, err := ReadPIDFile()
	if err != nil {
		return 0, false
	}
	return pid, isProcessRunning(pid)
}

// Stop asks the running server to shut down gracefully.
func Stop() (int, error) {
	pid, running := IsRunning()
	if !running {
		return 0, prserrors.New("server is not running")
	}
	if err := terminate(pid); err != nil {
		return pid, prserrors.Wrapf(err, "failed to signal process %d", pid)
	}
	return pid, nil
}
