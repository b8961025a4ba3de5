package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

var (
	// ErrEmptyAudio is returned when Play is given no samples.
	ErrEmptyAudio = errors.New("audio data is empty")
	// ErrPlayerClosed is returned by Play after Close.
	ErrPlayerClosed = errors.New("player is closed")
)

// pollInterval is how often Play checks whether the device drained.
const pollInterval = 25 * time.Millisecond

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int // 22050, 24000, 44100 or 48000 Hz
	Channels   int // 1 = mono, 2 = stereo
	BitDepth   int // 16 bits per sample
	BufferSize int // bytes buffered by the device
}

// DefaultPlayerConfig returns the configuration speech audio is decoded to.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: 24000,
		Channels:   1,
		BitDepth:   16,
		BufferSize: 4096,
	}
}

// Player plays one clip at a time. The oto context is opened on first use,
// so constructing a Player never touches the audio device.
type Player struct {
	config PlayerConfig

	initOnce sync.Once
	initErr  error
	context  *oto.Context

	mu      sync.Mutex
	current *oto.Player
	// data backs current and must stay reachable while it plays.
	data   []byte
	closed bool
}

// NewPlayer validates config and returns an idle player.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Player{config: config}, nil
}

func validateConfig(config PlayerConfig) error {
	switch config.SampleRate {
	case 22050, 24000, 44100, 48000:
	default:
		return fmt.Errorf("sample rate must be 22050, 24000, 44100 or 48000 Hz, got %d", config.SampleRate)
	}

	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}

	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}

	if config.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}

	return nil
}

// Duration returns how long pcm takes to play with this configuration.
func (c PlayerConfig) Duration(pcm []byte) time.Duration {
	frame := c.Channels * c.BitDepth / 8
	if frame == 0 || c.SampleRate == 0 {
		return 0
	}
	samples := len(pcm) / frame
	return time.Duration(samples) * time.Second / time.Duration(c.SampleRate)
}

func (p *Player) ensureContext() error {
	p.initOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   p.config.SampleRate,
			ChannelCount: p.config.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   p.config.Duration(make([]byte, p.config.BufferSize)),
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			p.initErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		p.context = ctx
		log.Debug("audio device opened", "sampleRate", p.config.SampleRate, "channels", p.config.Channels)
	})
	return p.initErr
}

// Play plays pcm (signed 16-bit little endian) and blocks until it finishes
// or ctx is done. Anything already playing is stopped first.
func (p *Player) Play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return ErrEmptyAudio
	}
	if err := p.ensureContext(); err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPlayerClosed
	}
	p.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)
	player := p.context.NewPlayer(bytes.NewReader(data))
	p.current = player
	p.data = data
	player.Play()
	p.mu.Unlock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.stopIf(player)
			return ctx.Err()
		case <-ticker.C:
			if !player.IsPlaying() {
				p.stopIf(player)
				return nil
			}
		}
	}
}

// IsPlaying reports whether a clip is playing.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current != nil && p.current.IsPlaying()
}

// Stop halts the current clip, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Close stops playback; later calls to Play fail.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	return nil
}

func (p *Player) stopIf(player *oto.Player) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == player {
		p.stopLocked()
	}
}

func (p *Player) stopLocked() {
	if p.current == nil {
		return
	}
	// Players are released by dropping the reference.
	p.current.Pause()
	p.current = nil
	p.data = nil
}
