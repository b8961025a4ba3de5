package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mykisan/kisan/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kisan.yml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s.Load())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "kisan.yml")
	s, err := Open(path)
	require.NoError(t, err)

	want := Settings{Notifications: false, VoiceResponses: true, DarkMode: true, Language: "kn-IN"}
	require.NoError(t, s.Save(want))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, want, reopened.Load())
}

func TestSavePreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kisan.yml")
	require.NoError(t, os.WriteFile(path, []byte("environment: production\nsettings:\n  dark_mode: true\n"), 0o600))

	s, err := Open(path)
	require.NoError(t, err)
	assert.True(t, s.Load().DarkMode)

	_, err = s.Toggle(content.KeyDarkMode)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "environment: production")

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.False(t, reopened.Load().DarkMode)
}

func TestSaveRejectsBadLanguage(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kisan.yml"))
	require.NoError(t, err)
	st := Defaults()
	st.Language = "not a language!"
	assert.Error(t, s.Save(st))
}

func TestToggle(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "kisan.yml"))
	require.NoError(t, err)

	st, err := s.Toggle(content.KeyVoiceResponses)
	require.NoError(t, err)
	assert.False(t, st.VoiceResponses)
	assert.False(t, st.Enabled(content.KeyVoiceResponses))
	assert.True(t, st.Enabled(content.KeyNotifications))

	_, err = s.Toggle("language")
	assert.ErrorIs(t, err, ErrUnknownToggle)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", Defaults().LanguageName())
	assert.Equal(t, "Kannada", Settings{Language: "kn-IN"}.LanguageName())
	assert.Equal(t, "Hindi", Settings{Language: "hi"}.LanguageName())
}

// startWatch runs Watch in the background and returns the channel of
// reloaded settings. The watch stops when the test ends.
func startWatch(t *testing.T, s *Store) <-chan Settings {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan Settings, 64)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(st Settings) {
			select {
			case changes <- st:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	return changes
}

// waitFor drains changes until one satisfies ok. A truncating write may be
// seen half done first.
func waitFor(t *testing.T, changes <-chan Settings, what string, ok func(Settings) bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case st := <-changes:
			if ok(st) {
				return
			}
		case <-deadline:
			t.Fatalf("no reload after %s", what)
		}
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kisan.yml")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(Defaults()))

	changes := startWatch(t, s)
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  dark_mode: true\n"), 0o600))

	waitFor(t, changes, "write", func(st Settings) bool { return st.DarkMode })
	assert.True(t, s.Load().DarkMode)
}

func TestWatch_RenameOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kisan.yml")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(Defaults()))

	changes := startWatch(t, s)

	// Editors save by writing a swap file and renaming it into place.
	swap := filepath.Join(dir, "kisan.yml.swp")
	require.NoError(t, os.WriteFile(swap, []byte("settings:\n  dark_mode: true\n"), 0o600))
	require.NoError(t, os.Rename(swap, path))
	waitFor(t, changes, "rename", func(st Settings) bool { return st.DarkMode })

	// The watch must survive the replaced file.
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  dark_mode: true\n  notifications: false\n"), 0o600))
	waitFor(t, changes, "write after rename", func(st Settings) bool { return !st.Notifications })
	assert.False(t, s.Load().Notifications)
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kisan.yml")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(Defaults()))

	changes := startWatch(t, s)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("settings:\n  dark_mode: true\n"), 0o600))

	select {
	case st := <-changes:
		t.Fatalf("unexpected reload: %+v", st)
	case <-time.After(300 * time.Millisecond):
	}
	assert.False(t, s.Load().DarkMode)
}
