package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestIsDaemonRunning_NotRunning(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true, want false for non-existent PID file")
	}
}

func TestIsDaemonRunning_WithCurrentProcess(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil", err)
	}
	if !running {
		t.Error("IsDaemonRunning() = false, want true for current process")
	}
}

func TestIsDaemonRunning_WithDeadProcess(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")

	// A PID far above typical pid_max.
	if err := os.WriteFile(pidFile, []byte("999999999\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true, want false for dead process")
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("stale PID file was not removed")
	}
}

func TestIsDaemonRunning_InvalidPID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte("not-a-number\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	running, err := IsDaemonRunning(pidFile)
	if err != nil {
		t.Errorf("IsDaemonRunning() error = %v, want nil for invalid PID", err)
	}
	if running {
		t.Error("IsDaemonRunning() = true, want false for invalid PID")
	}
}

func TestStopDaemon_NotRunning(t *testing.T) {
	if err := StopDaemon(filepath.Join(t.TempDir(), "watch.pid")); err == nil {
		t.Error("StopDaemon() expected error for non-existent daemon, got nil")
	}
}

func TestStopDaemon_InvalidPID(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "watch.pid")
	if err := os.WriteFile(pidFile, []byte("invalid\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	if err := StopDaemon(pidFile); err == nil {
		t.Error("StopDaemon() expected error for invalid PID, got nil")
	}
}

func TestStartDaemon_AlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "watch.pid")
	logFile := filepath.Join(dir, "watch.log")

	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	if err := StartDaemon(pidFile, logFile, []string{"watch"}); err == nil {
		t.Error("StartDaemon() expected error for already running daemon, got nil")
	}
}

func TestStartDaemon_InvalidLogFile(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "watch.pid")
	logFile := filepath.Join(dir, "nonexistent", "watch.log")

	if err := StartDaemon(pidFile, logFile, []string{"watch"}); err == nil {
		t.Error("StartDaemon() expected error for invalid log file path, got nil")
	}
}

func TestRunDaemon_ContextCancelRemovesPIDFile(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "a,b\n")
	pidFile := filepath.Join(dir, "watch.pid")
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		t.Fatalf("failed to write PID file: %v", err)
	}

	w, err := New(path, func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := RunDaemon(ctx, w, pidFile); err != nil {
		t.Fatalf("RunDaemon() error = %v", err)
	}
	if w.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", w.Runs())
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("PID file was not removed")
	}
}
