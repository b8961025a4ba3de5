package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/mykisan/kisan/internal/api"
	"github.com/mykisan/kisan/internal/audio"
	"github.com/mykisan/kisan/internal/cache"
	"github.com/mykisan/kisan/internal/history"
	"github.com/mykisan/kisan/internal/settings"
	"github.com/mykisan/kisan/internal/speech"
	"github.com/mykisan/kisan/internal/voice"
	"github.com/mykisan/kisan/ui"
	"github.com/spf13/viper"
)

// cacheCompressionLevel is the zstd level used for cached responses.
const cacheCompressionLevel = 3

func appScope() *gap.Scope {
	return gap.NewScope(gap.User, "kisan")
}

func cacheDir() (string, error) {
	dir, err := appScope().CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "responses"), nil
}

func historyPath() (string, error) {
	dirs, err := appScope().DataDirs()
	if err != nil || len(dirs) == 0 {
		return "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return filepath.Join(dirs[0], "history.db"), nil
}

func openHistory() (*history.Store, error) {
	path, err := historyPath()
	if err != nil {
		return nil, err
	}
	s, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open history at %s: %w", path, err)
	}
	return s, nil
}

func settingsPath() string {
	if configFile != "" {
		return configFile
	}
	return viper.ConfigFileUsed()
}

func openCache() (*cache.Cache, *cache.DiskStore, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.NewDiskStore(dir, cacheCompressionLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open cache: %w", err)
	}
	return cache.New(store), store, nil
}

func newClient(c *cache.Cache) *api.Client {
	return api.NewClient(api.Config{
		BaseURL:           viper.GetString("api.base_url"),
		Environment:       environment,
		Timeout:           viper.GetDuration("api.timeout"),
		RequestsPerMinute: viper.GetInt("api.requests_per_minute"),
		Cache:             c,
		CacheTTL:          viper.GetDuration("api.cache_ttl"),
	})
}

// backends are the long-lived resources behind the TUI and the one-shot
// commands. Optional ones are nil when they could not be opened.
type backends struct {
	store    *cache.DiskStore
	cache    *cache.Cache
	client   *api.Client
	history  *history.Store
	settings *settings.Store
	player   *audio.Player
	voice    *voice.Controller
}

// openBackends opens the cache and API client, and the history and
// settings stores when available. withVoice also sets up capture and
// playback.
func openBackends(withVoice bool) (*backends, error) {
	c, store, err := openCache()
	if err != nil {
		return nil, err
	}
	b := &backends{
		store:  store,
		cache:  c,
		client: newClient(c),
	}

	if b.history, err = openHistory(); err != nil {
		log.Warn("History disabled", "error", err)
	}

	if path := settingsPath(); path != "" {
		if b.settings, err = settings.Open(path); err != nil {
			log.Warn("Settings disabled", "path", path, "error", err)
		}
	}

	if withVoice {
		if err := b.openVoice(); err != nil {
			log.Warn("Voice disabled", "error", err)
		}
	}
	return b, nil
}

func (b *backends) openVoice() error {
	cfg := audio.DefaultPlayerConfig()
	player, err := audio.NewPlayer(cfg)
	if err != nil {
		return fmt.Errorf("unable to create audio player: %w", err)
	}
	b.player = player

	lang := settings.Defaults().Language
	if b.settings != nil {
		lang = b.settings.Load().Language
	}

	synth := speech.NewGTTSSynthesizer(player, speech.GTTSConfig{
		SampleRate: cfg.SampleRate,
		Cache:      b.cache,
	})
	rec := speech.NewCommandRecognizer(viper.GetString("voice.recognizer"))
	mic := speech.NewCommandMicrophone(viper.GetString("voice.recorder"))
	log.Debug("Voice capabilities", "capabilities", speech.Probe(rec, mic, synth))

	client := b.client
	b.voice = voice.NewController(voice.Config{
		Language:    lang,
		Recognizer:  rec,
		Microphone:  mic,
		Synthesizer: synth,
		Transcriber: voice.TranscriberFunc(func(ctx context.Context, wav []byte, language string) (string, error) {
			res, err := client.Transcribe(ctx, wav, language)
			return res.Text, err
		}),
	})
	return nil
}

// services exposes the opened backends to the TUI, leaving missing ones
// nil.
func (b *backends) services() ui.Services {
	svc := ui.Services{Tools: b.client}
	if b.voice != nil {
		svc.Voice = b.voice
	}
	if b.history != nil {
		svc.History = b.history
	}
	if b.settings != nil {
		svc.Settings = b.settings
	}
	return svc
}

// recorder returns the history store as a ui.History, or nil.
func (b *backends) recorder() ui.History {
	if b.history == nil {
		return nil
	}
	return b.history
}

func (b *backends) Close() error {
	if b.cache != nil {
		st := b.cache.Stats()
		log.Debug("Cache stats", "hits", st.Hits, "misses", st.Misses, "hit_rate", fmt.Sprintf("%.0f%%", st.HitRate()*100))
	}
	var errs []error
	if b.voice != nil {
		errs = append(errs, b.voice.Close())
	}
	if b.player != nil {
		errs = append(errs, b.player.Close())
	}
	if b.history != nil {
		errs = append(errs, b.history.Close())
	}
	if b.store != nil {
		errs = append(errs, b.store.Close())
	}
	return errors.Join(errs...)
}
