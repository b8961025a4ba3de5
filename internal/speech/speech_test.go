package speech

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/mykisan/kisan/internal/cache"
	"github.com/mykisan/kisan/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// script writes an executable shell script and returns its path.
func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	path := filepath.Join(t.TempDir(), "cmd.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func collect(t *testing.T, s voice.RecognitionSession) []voice.RecognitionEvent {
	t.Helper()
	var out []voice.RecognitionEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-s.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("recognizer did not finish")
		}
	}
}

func TestPlainText(t *testing.T) {
	in := "# Market update\n\nWheat is **₹2,450** per quintal.\n\n- Bangalore APMC\n- Mysore Mandi\n\n```\nignored()\n```\n"
	assert.Equal(t, "Market update\nWheat is ₹2,450 per quintal.\nBangalore APMC\nMysore Mandi", PlainText(in))
	assert.Equal(t, "", PlainText("   "))
	assert.Equal(t, "line one line two", PlainText("line one\nline two"))
}

func TestBaseLanguage(t *testing.T) {
	assert.Equal(t, "kn", baseLanguage("kn-IN"))
	assert.Equal(t, "hi", baseLanguage("hi-IN"))
	assert.Equal(t, "en", baseLanguage("en-IN"))
	assert.Equal(t, "en", baseLanguage("!!"))
}

func TestFFmpegArgs(t *testing.T) {
	args := ffmpegArgs("in.mp3", 24000, 0.9, 1.0)
	assert.Contains(t, args, "atempo=0.90")
	assert.Equal(t, "-", args[len(args)-1])

	assert.NotContains(t, ffmpegArgs("in.mp3", 24000, 1.0, 1.0), "-filter:a")
	assert.Contains(t, ffmpegArgs("in.mp3", 24000, 5, 1.0), "atempo=2.00")
	assert.Contains(t, ffmpegArgs("in.mp3", 24000, 1.0, 1.25), "asetrate=30000,aresample=24000,atempo=0.80")
}

func TestAvailability(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(string) (string, error) { return "", errors.New("not found") }

	assert.False(t, NewCommandRecognizer("vosk-stream").Available())
	assert.False(t, NewCommandRecognizer("").Available())
	assert.False(t, NewCommandMicrophone("").Available())
	assert.False(t, NewGTTSSynthesizer(&fakeSink{}, GTTSConfig{}).Available())

	lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	assert.True(t, NewCommandRecognizer("vosk-stream --lang {lang}").Available())
	assert.True(t, NewCommandMicrophone("").Available())
	assert.True(t, NewGTTSSynthesizer(&fakeSink{}, GTTSConfig{}).Available())
	assert.False(t, NewGTTSSynthesizer(nil, GTTSConfig{}).Available())
}

func TestCommandRecognizer(t *testing.T) {
	cmd := script(t, `echo "lang=$1" >&2
echo '{"text":"whe"}'
echo 'not json'
echo '{"text":"wheat prices","final":true}'`)

	r := NewCommandRecognizer(cmd + " {lang}")
	s, err := r.Start(context.Background(), voice.RecognitionOptions{Language: "en-IN", Interim: true})
	require.NoError(t, err)

	events := collect(t, s)
	require.Len(t, events, 2)
	assert.Equal(t, voice.RecognitionEvent{Text: "whe"}, events[0])
	assert.Equal(t, voice.RecognitionEvent{Text: "wheat prices", Final: true}, events[1])
	require.NoError(t, s.Stop())
}

func TestCommandRecognizer_FinalOnly(t *testing.T) {
	cmd := script(t, `echo '{"text":"whe"}'
echo '{"text":"wheat","final":true}'`)

	s, err := NewCommandRecognizer(cmd).Start(context.Background(), voice.RecognitionOptions{})
	require.NoError(t, err)
	events := collect(t, s)
	require.Len(t, events, 1)
	assert.True(t, events[0].Final)
}

func TestCommandRecognizer_Error(t *testing.T) {
	cmd := script(t, `echo '{"error":"no-speech"}'
exit 3`)

	s, err := NewCommandRecognizer(cmd).Start(context.Background(), voice.RecognitionOptions{})
	require.NoError(t, err)
	events := collect(t, s)
	require.Len(t, events, 2)
	assert.EqualError(t, events[0].Err, "no-speech")
	assert.Error(t, events[1].Err)
}

func TestCommandRecognizer_Stop(t *testing.T) {
	cmd := script(t, `echo '{"text":"hello","final":true}'
exec sleep 10`)

	s, err := NewCommandRecognizer(cmd).Start(context.Background(), voice.RecognitionOptions{})
	require.NoError(t, err)

	first := <-s.Events()
	assert.Equal(t, "hello", first.Text)
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	// No error is reported for an interrupted recognizer.
	assert.Empty(t, collect(t, s))
}

func TestCommandMicrophone(t *testing.T) {
	cmd := script(t, `printf 'RIFFDATA'
exec sleep 10`)

	rec, err := NewCommandMicrophone(cmd).Start(context.Background())
	require.NoError(t, err)

	audio, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFDATA"), audio)

	again, err := rec.Stop()
	require.NoError(t, err)
	assert.Equal(t, audio, again)
}

func TestCommandMicrophone_DeviceFailure(t *testing.T) {
	cmd := script(t, `echo 'audio open error: Device or resource busy' >&2
exit 1`)

	_, err := NewCommandMicrophone(cmd).Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Device or resource busy")
}

type fakeSink struct {
	played [][]byte
}

func (s *fakeSink) Play(_ context.Context, pcm []byte) error {
	s.played = append(s.played, pcm)
	return nil
}

func TestGTTSSynthesizer_CachedAudio(t *testing.T) {
	c := cache.New(cache.NewMemoryStore())
	opts := voice.SpeechOptions{Language: "kn-IN", Rate: voice.SpeechRate, Pitch: voice.SpeechPitch}
	pcm := []byte{1, 2, 3, 4}
	require.NoError(t, c.Set(audioKey("Namaskara", "kn", opts.Rate), pcm, time.Hour))

	sink := &fakeSink{}
	s := NewGTTSSynthesizer(sink, GTTSConfig{Cache: c})
	require.NoError(t, s.Speak(context.Background(), "**Namaskara**", opts))
	assert.Equal(t, [][]byte{pcm}, sink.played)
}

func TestClipText(t *testing.T) {
	assert.Equal(t, "short", clipText("short", 10))
	assert.Equal(t, "ab", clipText("abc", 2))
	// ಕ is three bytes; a cut inside it backs up to the start.
	assert.Equal(t, "a ", clipText("a ಕನ್ನಡ", 3))
	assert.Equal(t, "a ", clipText("a ಕನ್ನಡ", 4))
	assert.Equal(t, "a ಕ", clipText("a ಕನ್ನಡ", 5))
}

func TestGTTSSynthesizer_LongTextKeepsValidUTF8(t *testing.T) {
	text := strings.Repeat("a", maxTextSize-2) + " ಕನ್ನಡ"
	want := strings.Repeat("a", maxTextSize-2) + " "
	require.True(t, utf8.ValidString(want))

	c := cache.New(cache.NewMemoryStore())
	opts := voice.SpeechOptions{Language: "kn-IN"}
	pcm := []byte{9, 9}
	require.NoError(t, c.Set(audioKey(want, "kn", opts.Rate), pcm, time.Hour))

	s := NewGTTSSynthesizer(&fakeSink{}, GTTSConfig{Cache: c})
	got, err := s.Synthesize(context.Background(), text, opts)
	require.NoError(t, err)
	assert.Equal(t, pcm, got)
}

func TestGTTSSynthesizer_EmptyText(t *testing.T) {
	s := NewGTTSSynthesizer(&fakeSink{}, GTTSConfig{})
	_, err := s.Synthesize(context.Background(), "```\ncode\n```", voice.SpeechOptions{})
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if name == "arecord" {
			return "/usr/bin/arecord", nil
		}
		return "", errors.New("not found")
	}

	caps := Probe(NewCommandRecognizer("vosk-stream"), NewCommandMicrophone(""), NewGTTSSynthesizer(&fakeSink{}, GTTSConfig{}))
	assert.Equal(t, Capabilities{Recording: true}, caps)
	assert.Equal(t, voice.RecordingFallback, caps.Capture())
	assert.Equal(t, "capture: recording fallback, synthesis: false", caps.String())

	assert.Equal(t, voice.Unavailable, Probe(nil, nil, nil).Capture())
}
