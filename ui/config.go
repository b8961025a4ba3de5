package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Directory searched for crop photos.
	Path string

	// Location sent with market queries and shown on the home screen.
	Location string `env:"KISAN_LOCATION" envDefault:"Karnataka"`

	// HistoryLimit caps how many history items are loaded.
	HistoryLimit int `env:"KISAN_HISTORY_LIMIT" envDefault:"50"`

	// Skip the splash and login screens. For debugging.
	SkipIntro      bool `env:"KISAN_SKIP_INTRO"`
	GlamourEnabled bool `env:"KISAN_ENABLE_GLAMOUR" envDefault:"true"`
}
