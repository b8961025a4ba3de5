package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// killGrace is how long an interrupted process gets before it is killed.
const killGrace = 100 * time.Millisecond

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// runCommand runs name with args, feeding stdin, and returns stdout. On
// timeout the process is interrupted, then killed.
func runCommand(ctx context.Context, timeout time.Duration, stdin []byte, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.Command(name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w, stderr: %s", name, err, bytes.TrimSpace(stderr.Bytes()))
		}
	case <-ctx.Done():
		interrupt(cmd, done)
		return nil, fmt.Errorf("%s timed out: %w", name, ctx.Err())
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s produced no output, stderr: %s", name, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// interrupt asks the process to exit and kills it if it does not. done
// must receive the result of cmd.Wait.
func interrupt(cmd *exec.Cmd, done <-chan error) error {
	if cmd.Process == nil {
		return nil
	}
	_ = cmd.Process.Signal(os.Interrupt)
	select {
	case err := <-done:
		return err
	case <-time.After(killGrace):
		_ = cmd.Process.Kill()
		return <-done
	}
}
