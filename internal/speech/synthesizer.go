package speech

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/mykisan/kisan/internal/cache"
	"github.com/mykisan/kisan/internal/voice"
	"golang.org/x/time/rate"
)

const (
	// maxTextSize is the longest text gtts-cli is asked to read.
	maxTextSize = 5000

	synthTimeout   = 30 * time.Second
	convertTimeout = 15 * time.Second
	audioCacheTTL  = 24 * time.Hour
)

// Sink plays decoded PCM.
type Sink interface {
	Play(ctx context.Context, pcm []byte) error
}

// GTTSConfig holds configuration for the gTTS synthesizer.
type GTTSConfig struct {
	// SampleRate of the PCM handed to the sink; defaults to 24000.
	SampleRate int
	// RequestsPerMinute limits calls to Google; defaults to 50.
	RequestsPerMinute int
	// Cache stores decoded audio when set.
	Cache *cache.Cache
}

// GTTSSynthesizer speaks text with gtts-cli, converting the MP3 to PCM with
// ffmpeg and playing it on a Sink.
type GTTSSynthesizer struct {
	sink        Sink
	sampleRate  int
	rateLimiter *rate.Limiter
	cache       *cache.Cache
}

// NewGTTSSynthesizer returns a synthesizer that plays on sink.
func NewGTTSSynthesizer(sink Sink, cfg GTTSConfig) *GTTSSynthesizer {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 24000
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = 50
	}
	return &GTTSSynthesizer{
		sink:        sink,
		sampleRate:  cfg.SampleRate,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		cache:       cfg.Cache,
	}
}

// Available reports whether gtts-cli and ffmpeg are installed.
func (s *GTTSSynthesizer) Available() bool {
	if s.sink == nil {
		return false
	}
	if _, err := lookPath("gtts-cli"); err != nil {
		return false
	}
	_, err := lookPath("ffmpeg")
	return err == nil
}

// Speak reads text aloud and returns when playback ends.
func (s *GTTSSynthesizer) Speak(ctx context.Context, text string, opts voice.SpeechOptions) error {
	pcm, err := s.Synthesize(ctx, text, opts)
	if err != nil {
		return err
	}
	return s.sink.Play(ctx, pcm)
}

// Synthesize returns PCM for text without playing it.
func (s *GTTSSynthesizer) Synthesize(ctx context.Context, text string, opts voice.SpeechOptions) ([]byte, error) {
	plain := PlainText(text)
	if plain == "" {
		return nil, errors.New("text cannot be empty")
	}
	plain = clipText(plain, maxTextSize)
	lang := baseLanguage(opts.Language)
	key := audioKey(plain, lang, opts.Rate)

	if s.cache != nil {
		var pcm []byte
		if s.cache.GetInto(key, &pcm) && len(pcm) > 0 {
			return pcm, nil
		}
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	mp3, err := runCommand(ctx, synthTimeout, nil, "gtts-cli", plain, "-l", lang, "-o", "-")
	if err != nil {
		return nil, fmt.Errorf("MP3 generation failed: %w", err)
	}
	pcm, err := s.toPCM(ctx, mp3, opts)
	if err != nil {
		return nil, fmt.Errorf("MP3 to PCM conversion failed: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(key, pcm, audioCacheTTL); err != nil {
			log.Debug("unable to cache speech audio", "error", err)
		}
	}
	return pcm, nil
}

func (s *GTTSSynthesizer) toPCM(ctx context.Context, mp3 []byte, opts voice.SpeechOptions) ([]byte, error) {
	f, err := os.CreateTemp("", "kisan-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp MP3 file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck
	if _, err := f.Write(mp3); err != nil {
		f.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to write MP3 data: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return runCommand(ctx, convertTimeout, nil, "ffmpeg", ffmpegArgs(f.Name(), s.sampleRate, opts.Rate, opts.Pitch)...)
}

func ffmpegArgs(input string, sampleRate int, speed, pitch float64) []string {
	args := []string{
		"-loglevel", "error",
		"-i", input,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
	}

	var filters []string
	tempo := 1.0
	if speed > 0 {
		tempo = speed
	}
	if pitch > 0 && pitch != 1.0 {
		// asetrate shifts pitch and tempo together; atempo undoes the
		// tempo part.
		filters = append(filters,
			fmt.Sprintf("asetrate=%d", int(float64(sampleRate)*pitch)),
			fmt.Sprintf("aresample=%d", sampleRate))
		tempo /= pitch
	}
	if tempo != 1.0 {
		// atempo accepts 0.5 to 2.0.
		tempo = min(max(tempo, 0.5), 2.0)
		filters = append(filters, fmt.Sprintf("atempo=%.2f", tempo))
	}
	if len(filters) > 0 {
		args = append(args, "-filter:a", strings.Join(filters, ","))
	}
	return append(args, "-")
}

// clipText shortens s to at most n bytes without splitting a character.
func clipText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func audioKey(text, lang string, rate float64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%.2f|%s", lang, rate, text)))
	return "speech:" + hex.EncodeToString(sum[:16])
}
