// Package runenv injects a parsed env mapping into a child process
// configuration and runs it.
package runenv

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// EnvEntry is one variable to inject. Entries come from the dotenv map in
// file order; later entries win when exec.Cmd.Env holds duplicates.
type EnvEntry struct {
	Key      string
	Value    string
	HasValue bool
}

// BuildEnv overlays entries onto the base environment. Entries without a
// value (KEY= in the source file) are not exported: absence of a value
// means absence of the variable.
func BuildEnv(base []string, entries []EnvEntry) []string {
	env := make([]string, len(base), len(base)+len(entries))
	copy(env, base)
	for _, e := range entries {
		if !e.HasValue {
			continue
		}
		env = append(env, fmt.Sprintf("%s=%s", e.Key, e.Value))
	}
	return env
}

// RunWithEnv runs a command with the given entries overlaid on the host
// environment, stdio passed through, and returns the child's exit code.
func RunWithEnv(entries []EnvEntry, workdir, command string, args []string) (int, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = BuildEnv(os.Environ(), entries)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if workdir != "" {
		cmd.Dir = workdir
	}
	// Child stays in our process group so Ctrl+C kills it too.
	return exitCodeFromError(cmd.Run())
}

func exitCodeFromError(runErr error) (int, error) {
	if runErr == nil {
		return 0, nil
	}
	if exitErr, ok := runErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), runErr
	}
	return -1, fmt.Errorf("failed to run command: %w", runErr)
}

// Runner manages a restartable child process for watch mode. The child
// runs in its own process group so Stop can terminate spawned children.
type Runner struct {
	Command string
	Args    []string
	Entries []EnvEntry
	Workdir string

	cmd *exec.Cmd
}

// killFunc is injectable for tests; production uses syscall.Kill.
var killFunc = func(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}

func (r *Runner) Start() error {
	r.cmd = exec.Command(r.Command, r.Args...)
	r.cmd.Env = BuildEnv(os.Environ(), r.Entries)
	r.cmd.Stdin = os.Stdin
	r.cmd.Stdout = os.Stdout
	r.cmd.Stderr = os.Stderr
	if r.Workdir != "" {
		r.cmd.Dir = r.Workdir
	}
	r.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return r.cmd.Start()
}

// Stop terminates the child's process group, escalating to SIGKILL when
// it does not exit within the grace period.
func (r *Runner) Stop() error {
	if r.cmd == nil || r.cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(r.cmd.Process.Pid)
	if err != nil {
		return r.cmd.Process.Kill()
	}
	if err := killFunc(-pgid, syscall.SIGTERM); err != nil {
		return r.cmd.Process.Kill()
	}

	done := make(chan error, 1)
	go func() {
		done <- r.cmd.Wait()
	}()
	select {
	case <-time.After(5 * time.Second):
		_ = killFunc(-pgid, syscall.SIGKILL)
		return fmt.Errorf("process did not exit gracefully, killed")
	case err := <-done:
		return err
	}
}

func (r *Runner) Wait() error {
	if r.cmd == nil {
		return fmt.Errorf("process not started")
	}
	return r.cmd.Wait()
}

func (r *Runner) ExitCode() int {
	if r.cmd == nil || r.cmd.ProcessState == nil {
		return -1
	}
	return r.cmd.ProcessState.ExitCode()
}
