package ui

import (
	"context"

	"github.com/mykisan/kisan/internal/api"
	"github.com/mykisan/kisan/internal/history"
	"github.com/mykisan/kisan/internal/settings"
	"github.com/mykisan/kisan/internal/voice"
)

// Tools answers the quick tool queries. *api.Client implements it.
type Tools interface {
	DiagnoseCrop(ctx context.Context, filename string, image []byte, description string) api.DiagnosisResult
	GetMarketPrices(ctx context.Context, crop, location string) api.MarketResult
	GetSchemeInfo(ctx context.Context, query string, profile *api.FarmerProfile) api.SchemeResult
}

// Voice captures speech and reads replies aloud. *voice.Controller
// implements it.
type Voice interface {
	StartListening() error
	StopListening()
	SpeakText(text string)
	State() voice.State
	Updates() <-chan voice.State
}

// History records answered queries. *history.Store implements it.
type History interface {
	Add(ctx context.Context, item history.Item) (history.Item, error)
	List(ctx context.Context, limit int) ([]history.Item, error)
}

// Preferences persists the settings toggles. *settings.Store implements it.
type Preferences interface {
	Load() settings.Settings
	Toggle(key string) (settings.Settings, error)
}

// Services are the backends the TUI drives. Any of them may be nil, in
// which case the matching features are inert.
type Services struct {
	Tools    Tools
	Voice    Voice
	History  History
	Settings Preferences
}
