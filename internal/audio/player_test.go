package audio

import (
	"context"
	"testing"
	"time"
)

func TestPlayerConfig(t *testing.T) {
	tests := []struct {
		name      string
		config    PlayerConfig
		expectErr bool
	}{
		{
			name:   "default",
			config: DefaultPlayerConfig(),
		},
		{
			name: "valid config 48000Hz stereo",
			config: PlayerConfig{
				SampleRate: 48000,
				Channels:   2,
				BitDepth:   16,
				BufferSize: 8192,
			},
		},
		{
			name: "invalid sample rate",
			config: PlayerConfig{
				SampleRate: 16000,
				Channels:   1,
				BitDepth:   16,
				BufferSize: 4096,
			},
			expectErr: true,
		},
		{
			name: "invalid channels",
			config: PlayerConfig{
				SampleRate: 44100,
				Channels:   3,
				BitDepth:   16,
				BufferSize: 4096,
			},
			expectErr: true,
		},
		{
			name: "invalid bit depth",
			config: PlayerConfig{
				SampleRate: 44100,
				Channels:   1,
				BitDepth:   24,
				BufferSize: 4096,
			},
			expectErr: true,
		},
		{
			name: "invalid buffer size",
			config: PlayerConfig{
				SampleRate: 44100,
				Channels:   1,
				BitDepth:   16,
				BufferSize: 0,
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlayer(tt.config)
			if tt.expectErr && err == nil {
				t.Errorf("expected error for %+v", tt.config)
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	cfg := DefaultPlayerConfig()
	// One second of mono 16-bit audio at 24kHz.
	pcm := make([]byte, 24000*2)
	if got := cfg.Duration(pcm); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}

	stereo := PlayerConfig{SampleRate: 48000, Channels: 2, BitDepth: 16}
	if got := stereo.Duration(make([]byte, 48000)); got != 250*time.Millisecond {
		t.Errorf("Duration() = %v, want 250ms", got)
	}

	if got := (PlayerConfig{}).Duration(pcm); got != 0 {
		t.Errorf("zero config Duration() = %v, want 0", got)
	}
}

// The device is never opened for these paths.
func TestPlayWithoutDevice(t *testing.T) {
	p, err := NewPlayer(DefaultPlayerConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Play(context.Background(), nil); err != ErrEmptyAudio {
		t.Errorf("Play(nil) = %v, want ErrEmptyAudio", err)
	}
	if p.IsPlaying() {
		t.Error("new player should not be playing")
	}
	p.Stop()
	if err := p.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
