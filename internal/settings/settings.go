// Package settings persists the user's preferences in the YAML config file
// under the "settings" key.
package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/mykisan/kisan/internal/content"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

const (
	keyNotifications  = "settings." + content.KeyNotifications
	keyVoiceResponses = "settings." + content.KeyVoiceResponses
	keyDarkMode       = "settings." + content.KeyDarkMode
	keyLanguage       = "settings.language"
)

// ErrUnknownToggle is returned by Toggle for keys that are not switches.
var ErrUnknownToggle = errors.New("unknown toggle")

// Settings are the user preferences.
type Settings struct {
	Notifications  bool
	VoiceResponses bool
	DarkMode       bool
	Language       string // BCP 47 tag, e.g. "en-IN"
}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		Notifications:  true,
		VoiceResponses: true,
		DarkMode:       false,
		Language:       "en-IN",
	}
}

// Enabled reports the value of a toggle by key.
func (s Settings) Enabled(key string) bool {
	switch key {
	case content.KeyNotifications:
		return s.Notifications
	case content.KeyVoiceResponses:
		return s.VoiceResponses
	case content.KeyDarkMode:
		return s.DarkMode
	default:
		return false
	}
}

// LanguageName returns the display name of the language, e.g. "English".
func (s Settings) LanguageName() string {
	tag, err := language.Parse(s.Language)
	if err != nil {
		return s.Language
	}
	base, _ := tag.Base()
	switch base.String() {
	case "hi":
		return "Hindi"
	case "kn":
		return "Kannada"
	case "te":
		return "Telugu"
	case "en":
		return "English"
	default:
		return tag.String()
	}
}

// Store reads and writes settings in one config file. Keys outside
// "settings" are preserved.
type Store struct {
	path string

	mu sync.Mutex
	v  *viper.Viper
}

// Open loads path if it exists. A missing file yields defaults and is
// created on the first Save.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	d := Defaults()
	v.SetDefault(keyNotifications, d.Notifications)
	v.SetDefault(keyVoiceResponses, d.VoiceResponses)
	v.SetDefault(keyDarkMode, d.DarkMode)
	v.SetDefault(keyLanguage, d.Language)
	return v
}

func (s *Store) reload() error {
	v := newViper(s.path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("unable to read settings from %s: %w", s.path, err)
		}
	}
	s.mu.Lock()
	s.v = v
	s.mu.Unlock()
	return nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current settings.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Settings{
		Notifications:  s.v.GetBool(keyNotifications),
		VoiceResponses: s.v.GetBool(keyVoiceResponses),
		DarkMode:       s.v.GetBool(keyDarkMode),
		Language:       s.v.GetString(keyLanguage),
	}
}

// Save writes st to the config file.
func (s *Store) Save(st Settings) error {
	tag, err := language.Parse(st.Language)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", st.Language, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(keyNotifications, st.Notifications)
	s.v.Set(keyVoiceResponses, st.VoiceResponses)
	s.v.Set(keyDarkMode, st.DarkMode)
	s.v.Set(keyLanguage, tag.String())

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("could not create settings directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("could not write settings: %w", err)
	}
	log.Debug("settings saved", "path", s.path)
	return nil
}

// Toggle flips the switch named key, saves, and returns the new settings.
func (s *Store) Toggle(key string) (Settings, error) {
	st := s.Load()
	switch key {
	case content.KeyNotifications:
		st.Notifications = !st.Notifications
	case content.KeyVoiceResponses:
		st.VoiceResponses = !st.VoiceResponses
	case content.KeyDarkMode:
		st.DarkMode = !st.DarkMode
	default:
		return st, fmt.Errorf("%w: %s", ErrUnknownToggle, key)
	}
	return st, s.Save(st)
}

// Watch reloads the file whenever it changes on disk and calls onChange
// with the new settings. It runs until ctx is cancelled. A failed reload is
// logged and the previous settings stay active.
//
// The parent directory is watched rather than the file, so saves that
// replace the file by renaming a temporary one over it are seen too.
func (s *Store) Watch(ctx context.Context, onChange func(Settings)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close() //nolint:errcheck

	target := filepath.Clean(s.path)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create settings directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Debug("watching settings", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.reload(); err != nil {
				log.Error("settings reload failed, keeping previous settings", "path", s.path, "error", err)
				continue
			}
			onChange(s.Load())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("settings watcher error", "error", err)
		}
	}
}
