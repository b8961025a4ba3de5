package voice

import "context"

// Recognizer is a native speech-to-text engine that streams results while
// the user speaks.
type Recognizer interface {
	// Available reports whether the engine can run on this device.
	Available() bool

	// Start begins a single-utterance session. The session's Events
	// channel must be closed once the session ends for any reason.
	Start(ctx context.Context, opts RecognitionOptions) (RecognitionSession, error)
}

// RecognitionOptions configures a recognition session.
type RecognitionOptions struct {
	Language string
	Interim  bool
}

// RecognitionEvent is one result (interim or final) or a failure.
type RecognitionEvent struct {
	Text  string
	Final bool
	Err   error
}

// RecognitionSession is a running recognition.
type RecognitionSession interface {
	Events() <-chan RecognitionEvent
	// Stop ends the session. Pending final results may still be delivered
	// before Events closes.
	Stop() error
}

// Microphone records raw audio for server-side transcription.
type Microphone interface {
	Available() bool
	// Start opens the device. Failing to open it is reported as a
	// permission error.
	Start(ctx context.Context) (Recording, error)
}

// Recording is audio being captured.
type Recording interface {
	// Stop ends capture and returns the recorded WAV bytes.
	Stop() ([]byte, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (string, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, audio []byte, language string) (string, error)

// Transcribe calls f.
func (f TranscriberFunc) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	return f(ctx, audio, language)
}

// SpeechOptions configures an utterance.
type SpeechOptions struct {
	Language string
	Rate     float64
	Pitch    float64
}

// Synthesizer speaks text aloud.
type Synthesizer interface {
	Available() bool
	Speak(ctx context.Context, text string, opts SpeechOptions) error
}

// Capability is the capture mechanism selected for this device.
type Capability int

const (
	// Unavailable means voice input cannot work here.
	Unavailable Capability = iota
	// NativeRecognition streams results from a local recognizer.
	NativeRecognition
	// RecordingFallback records audio and sends it to the server.
	RecordingFallback
)

// String returns the string representation of the capability.
func (c Capability) String() string {
	switch c {
	case NativeRecognition:
		return "native recognition"
	case RecordingFallback:
		return "recording fallback"
	default:
		return "unavailable"
	}
}

// Probe picks the preferred capture mechanism. Either argument may be nil.
func Probe(r Recognizer, m Microphone) Capability {
	switch {
	case r != nil && r.Available():
		return NativeRecognition
	case m != nil && m.Available():
		return RecordingFallback
	default:
		return Unavailable
	}
}
