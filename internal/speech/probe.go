package speech

import (
	"fmt"

	"github.com/mykisan/kisan/internal/voice"
)

// Capabilities lists what the host can do.
type Capabilities struct {
	Recognition bool
	Recording   bool
	Synthesis   bool
}

// Probe checks which capabilities are installed. Nil arguments count as
// missing.
func Probe(r voice.Recognizer, m voice.Microphone, s voice.Synthesizer) Capabilities {
	return Capabilities{
		Recognition: r != nil && r.Available(),
		Recording:   m != nil && m.Available(),
		Synthesis:   s != nil && s.Available(),
	}
}

// Capture returns the voice capture mechanism these capabilities select.
func (c Capabilities) Capture() voice.Capability {
	switch {
	case c.Recognition:
		return voice.NativeRecognition
	case c.Recording:
		return voice.RecordingFallback
	default:
		return voice.Unavailable
	}
}

func (c Capabilities) String() string {
	return fmt.Sprintf("capture: %s, synthesis: %t", c.Capture(), c.Synthesis)
}
