package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mykisan/kisan/internal/voice"
)

// DefaultRecordCommand captures 16kHz mono WAV from the default ALSA device.
const DefaultRecordCommand = "arecord -q -f S16_LE -r 16000 -c 1 -t wav -"

// startGrace is how long a recorder must survive to count as started.
const startGrace = 150 * time.Millisecond

// CommandMicrophone records with an external program that writes WAV to
// stdout until interrupted.
type CommandMicrophone struct {
	name string
	args []string
}

// NewCommandMicrophone parses a command line; empty means
// DefaultRecordCommand.
func NewCommandMicrophone(command string) *CommandMicrophone {
	if strings.TrimSpace(command) == "" {
		command = DefaultRecordCommand
	}
	fields := strings.Fields(command)
	return &CommandMicrophone{name: fields[0], args: fields[1:]}
}

// Available reports whether the recorder is installed.
func (m *CommandMicrophone) Available() bool {
	_, err := lookPath(m.name)
	return err == nil
}

// Start begins recording. A recorder that cannot open the device exits
// at once; that is reported as an error.
func (m *CommandMicrophone) Start(ctx context.Context) (voice.Recording, error) {
	cmd := exec.Command(m.name, m.args...)
	r := &commandRecording{cmd: cmd, done: make(chan error, 1), stopped: make(chan struct{})}
	cmd.Stdout = &r.out
	cmd.Stderr = &r.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("unable to start %s: %w", m.name, err)
	}
	go func() {
		r.done <- cmd.Wait()
	}()

	select {
	case err := <-r.done:
		if err == nil {
			err = errors.New("recorder exited immediately")
		}
		return nil, fmt.Errorf("%s: %w, stderr: %s", m.name, err, bytes.TrimSpace(r.stderr.Bytes()))
	case <-time.After(startGrace):
	case <-ctx.Done():
		_ = interrupt(cmd, r.done)
		return nil, ctx.Err()
	}

	go func() {
		select {
		case <-ctx.Done():
			_, _ = r.Stop()
		case <-r.stopped:
		}
	}()
	return r, nil
}

type commandRecording struct {
	cmd    *exec.Cmd
	out    bytes.Buffer
	stderr bytes.Buffer
	done   chan error

	once    sync.Once
	stopped chan struct{}
	audio   []byte
	err     error
}

// Stop interrupts the recorder and returns what it wrote.
func (r *commandRecording) Stop() ([]byte, error) {
	r.once.Do(func() {
		defer close(r.stopped)
		_ = interrupt(r.cmd, r.done)
		if r.out.Len() == 0 {
			r.err = fmt.Errorf("no audio recorded, stderr: %s", bytes.TrimSpace(r.stderr.Bytes()))
			return
		}
		r.audio = r.out.Bytes()
	})
	return r.audio, r.err
}
