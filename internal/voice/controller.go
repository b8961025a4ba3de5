package voice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// DefaultLanguage is the recognition and synthesis locale.
	DefaultLanguage = "en-IN"
	// SpeechRate is the synthesis rate relative to normal.
	SpeechRate = 0.9
	// SpeechPitch is the synthesis pitch relative to normal.
	SpeechPitch = 1.0

	defaultTranscribeTimeout = 30 * time.Second
	updateBuffer             = 16
)

// Config wires the platform capabilities into a Controller. Any capability
// may be nil.
type Config struct {
	Language    string
	Recognizer  Recognizer
	Microphone  Microphone
	Transcriber Transcriber
	Synthesizer Synthesizer

	// TranscribeTimeout bounds server-side transcription of a recording.
	TranscribeTimeout time.Duration
}

// session is one StartListening call. Events from a session that is no
// longer current are dropped.
type session struct {
	id          string
	recognition RecognitionSession
	recording   Recording
	stopped     bool
}

// Controller owns voice capture and playback. It is safe for concurrent use.
type Controller struct {
	cfg        Config
	capability Capability

	mu      sync.Mutex
	state   State
	current *session
	closed  bool
	updates chan State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController probes the available capabilities and returns an idle
// controller.
func NewController(cfg Config) *Controller {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.TranscribeTimeout <= 0 {
		cfg.TranscribeTimeout = defaultTranscribeTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:        cfg,
		capability: Probe(cfg.Recognizer, cfg.Microphone),
		updates:    make(chan State, updateBuffer),
		ctx:        ctx,
		cancel:     cancel,
	}
	c.state.Capability = c.capability

	log.Debug("voice controller ready", "capability", c.capability, "language", cfg.Language)
	return c
}

// Capability returns the mechanism selected at construction.
func (c *Controller) Capability() Capability {
	return c.capability
}

// CanSpeak reports whether SpeakText will produce audio.
func (c *Controller) CanSpeak() bool {
	return c.cfg.Synthesizer != nil && c.cfg.Synthesizer.Available()
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates delivers a snapshot after every change. Slow readers only miss
// intermediate snapshots. The channel is closed by Close.
func (c *Controller) Updates() <-chan State {
	return c.updates
}

// StartListening clears the previous transcript and error and begins a new
// capture. Native recognition is preferred; if it fails to start the
// microphone is used instead. An active session is stopped first.
func (c *Controller) StartListening() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prev := c.detachLocked()

	s := &session{id: uuid.NewString()}
	c.current = s
	c.state.Transcript = ""
	c.state.Err = nil
	c.state.Listening = false
	c.state.Processing = false
	c.state.SessionID = s.id
	c.publishLocked()
	c.mu.Unlock()

	stopSession(prev)

	if c.capability == Unavailable {
		return c.fail(s, newError(ErrorCodeUnavailable, "Speech recognition not supported", nil))
	}

	if c.capability == NativeRecognition {
		rs, err := c.cfg.Recognizer.Start(c.ctx, RecognitionOptions{Language: c.cfg.Language, Interim: true})
		if err == nil {
			return c.attachRecognition(s, rs)
		}
		log.Warn("native recognition failed to start, falling back to recording", "session", s.id, "error", err)
	}

	mic := c.cfg.Microphone
	if mic == nil || !mic.Available() {
		return c.fail(s, newError(ErrorCodeUnavailable, "Speech recognition not supported", nil))
	}
	rec, err := mic.Start(c.ctx)
	if err != nil {
		return c.fail(s, newError(ErrorCodePermission, "Microphone access denied", err))
	}
	return c.attachRecording(s, rec)
}

// StopListening ends the active capture. It is a no-op when nothing is
// running and may be called any number of times.
func (c *Controller) StopListening() {
	c.mu.Lock()
	s := c.current
	if s == nil || s.stopped {
		if c.state.Listening {
			c.state.Listening = false
			c.publishLocked()
		}
		c.mu.Unlock()
		return
	}
	s.stopped = true
	c.state.Listening = false

	if s.recording != nil {
		// Recorded audio is transcribed in the background.
		c.state.Processing = true
		c.publishLocked()
		c.wg.Add(1)
		c.mu.Unlock()
		go c.transcribe(s)
		return
	}

	c.publishLocked()
	c.mu.Unlock()

	if s.recognition != nil {
		if err := s.recognition.Stop(); err != nil {
			log.Debug("stopping recognition", "session", s.id, "error", err)
		}
	}
}

// SpeakText reads text aloud in the background. Without a synthesizer it
// does nothing. Callers are not told when speech finishes.
func (c *Controller) SpeakText(text string) {
	if text == "" || !c.CanSpeak() {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		opts := SpeechOptions{Language: c.cfg.Language, Rate: SpeechRate, Pitch: SpeechPitch}
		if err := c.cfg.Synthesizer.Speak(c.ctx, text, opts); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("speech synthesis failed", "error", err)
		}
	}()
}

// Close stops any active session, waits for background work and closes the
// Updates channel. Results that arrive afterwards are discarded.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	s := c.detachLocked()
	c.mu.Unlock()

	c.cancel()
	stopSession(s)
	c.wg.Wait()

	c.mu.Lock()
	close(c.updates)
	c.mu.Unlock()
	return nil
}

func (c *Controller) attachRecognition(s *session, rs RecognitionSession) error {
	c.mu.Lock()
	if c.closed || c.current != s {
		c.mu.Unlock()
		_ = rs.Stop()
		drain(rs.Events())
		return nil
	}
	s.recognition = rs
	c.state.Listening = true
	c.publishLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	log.Debug("recognition started", "session", s.id)
	go c.watchRecognition(s, rs.Events())
	return nil
}

func (c *Controller) attachRecording(s *session, rec Recording) error {
	c.mu.Lock()
	if c.closed || c.current != s {
		c.mu.Unlock()
		_, _ = rec.Stop()
		return nil
	}
	s.recording = rec
	c.state.Listening = true
	c.publishLocked()
	c.mu.Unlock()

	log.Debug("recording started", "session", s.id)
	return nil
}

// watchRecognition applies recognizer events until the session ends. Only
// final results update the transcript.
func (c *Controller) watchRecognition(s *session, events <-chan RecognitionEvent) {
	defer c.wg.Done()

	for ev := range events {
		c.mu.Lock()
		if c.closed || c.current != s {
			c.mu.Unlock()
			continue
		}
		switch {
		case ev.Err != nil:
			log.Error("speech recognition error", "session", s.id, "error", ev.Err)
			c.state.Err = newError(ErrorCodeRecognition, "Speech recognition error: "+ev.Err.Error(), ev.Err)
			c.state.Listening = false
			c.publishLocked()
		case ev.Final:
			c.state.Transcript = ev.Text
			c.publishLocked()
		}
		c.mu.Unlock()
	}

	c.mu.Lock()
	if !c.closed && c.current == s {
		c.current = nil
		c.state.Listening = false
		c.publishLocked()
	}
	c.mu.Unlock()
	log.Debug("recognition ended", "session", s.id)
}

func (c *Controller) transcribe(s *session) {
	defer c.wg.Done()

	text, err := c.runTranscription(s)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.current != s {
		return
	}
	c.current = nil
	c.state.Processing = false
	c.state.Listening = false
	if err != nil {
		log.Error("voice transcription failed", "session", s.id, "error", err)
		c.state.Err = newError(ErrorCodeTranscription, "Failed to process audio", err)
	} else {
		c.state.Transcript = text
	}
	c.publishLocked()
}

func (c *Controller) runTranscription(s *session) (string, error) {
	audio, err := s.recording.Stop()
	if err != nil {
		return "", err
	}
	if c.cfg.Transcriber == nil {
		return "", errors.New("no transcriber configured")
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.TranscribeTimeout)
	defer cancel()
	return c.cfg.Transcriber.Transcribe(ctx, audio, c.cfg.Language)
}

// fail records err for s and returns it.
func (c *Controller) fail(s *session, err *Error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.current != s {
		return err
	}
	c.current = nil
	c.state.Err = err
	c.state.Listening = false
	c.publishLocked()
	return err
}

// detachLocked removes the current session without stopping it.
func (c *Controller) detachLocked() *session {
	s := c.current
	c.current = nil
	return s
}

// publishLocked sends a snapshot, replacing the oldest queued one if the
// buffer is full.
func (c *Controller) publishLocked() {
	if c.closed {
		return
	}
	snap := c.state
	select {
	case c.updates <- snap:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}

// stopSession releases a superseded session. A recording is discarded.
func stopSession(s *session) {
	if s == nil || s.stopped {
		return
	}
	s.stopped = true
	if s.recognition != nil {
		_ = s.recognition.Stop()
	}
	if s.recording != nil {
		_, _ = s.recording.Stop()
	}
}

func drain(events <-chan RecognitionEvent) {
	for range events { //nolint:revive
	}
}
