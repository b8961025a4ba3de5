package speech

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mykisan/kisan/internal/voice"
)

// LangPlaceholder in a command line is replaced with the session locale.
const LangPlaceholder = "{lang}"

// recognizerLine is one line of recognizer output.
type recognizerLine struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
	Error string `json:"error"`
}

// CommandRecognizer runs an external streaming recognizer. The program
// prints one JSON object per line: {"text": "...", "final": true} for
// results or {"error": "..."} on failure, and exits after the utterance or
// on SIGINT.
type CommandRecognizer struct {
	name string
	args []string
}

// NewCommandRecognizer parses a command line. An empty command yields a
// recognizer that is never available.
func NewCommandRecognizer(command string) *CommandRecognizer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return &CommandRecognizer{}
	}
	return &CommandRecognizer{name: fields[0], args: fields[1:]}
}

// Available reports whether the command is configured and installed.
func (r *CommandRecognizer) Available() bool {
	if r.name == "" {
		return false
	}
	_, err := lookPath(r.name)
	return err == nil
}

// Start launches the recognizer for one utterance.
func (r *CommandRecognizer) Start(ctx context.Context, opts voice.RecognitionOptions) (voice.RecognitionSession, error) {
	if r.name == "" {
		return nil, errors.New("no recognizer command configured")
	}
	args := make([]string, len(r.args))
	for i, a := range r.args {
		args[i] = strings.ReplaceAll(a, LangPlaceholder, opts.Language)
	}

	cmd := exec.Command(r.name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("recognizer stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("unable to start %s: %w", r.name, err)
	}

	s := &commandSession{
		cmd:     cmd,
		events:  make(chan voice.RecognitionEvent, 4),
		stopped: make(chan struct{}),
		exited:  make(chan struct{}),
		interim: opts.Interim,
	}
	go s.read(bufio.NewScanner(stdout))
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.exited:
		}
	}()
	return s, nil
}

type commandSession struct {
	cmd     *exec.Cmd
	events  chan voice.RecognitionEvent
	interim bool

	stopOnce sync.Once
	stopped  chan struct{}
	exited   chan struct{}
}

func (s *commandSession) Events() <-chan voice.RecognitionEvent {
	return s.events
}

// Stop interrupts the recognizer. Results it prints while exiting are still
// delivered.
func (s *commandSession) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopped)
		if s.cmd.Process == nil {
			return
		}
		_ = s.cmd.Process.Signal(os.Interrupt)
		go func() {
			select {
			case <-s.exited:
			case <-time.After(killGrace):
				_ = s.cmd.Process.Kill()
			}
		}()
	})
	return nil
}

func (s *commandSession) read(sc *bufio.Scanner) {
	defer close(s.events)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var l recognizerLine
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			log.Debug("ignoring recognizer output", "line", line, "error", err)
			continue
		}
		switch {
		case l.Error != "":
			s.events <- voice.RecognitionEvent{Err: errors.New(l.Error)}
		case l.Final || s.interim:
			s.events <- voice.RecognitionEvent{Text: l.Text, Final: l.Final}
		}
	}

	err := s.cmd.Wait()
	close(s.exited)

	select {
	case <-s.stopped:
		// Exit status after an interrupt is expected.
	default:
		if err != nil {
			s.events <- voice.RecognitionEvent{Err: fmt.Errorf("recognizer exited: %w", err)}
		}
	}
}
