package api

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
)

// Transcribe sends recorded audio to the speech endpoint and returns the
// server's answer. Unlike the other calls it reports failures, because a
// failed transcription is shown to the user.
func (c *Client) Transcribe(ctx context.Context, audio []byte, language string) (VoiceResult, error) {
	if language == "" {
		language = "en"
	}
	var res VoiceResult
	err := c.postMultipart(ctx, PathSpeak,
		map[string]string{"language": language},
		[]formFile{{field: "audio", filename: "recording.wav", data: audio}},
		&res,
	)
	if err != nil {
		return VoiceResult{}, err
	}
	return res, nil
}

// ProcessVoice is Transcribe with the offline fallback applied.
func (c *Client) ProcessVoice(ctx context.Context, audio []byte, language string) VoiceResult {
	res, err := c.Transcribe(ctx, audio, language)
	if err != nil {
		log.Error("Voice processing error", "error", err)
		return mockVoiceResult()
	}
	return res
}

// DiagnoseCrop uploads a crop photo for analysis. description is optional.
func (c *Client) DiagnoseCrop(ctx context.Context, filename string, image []byte, description string) DiagnosisResult {
	fields := map[string]string{}
	if description != "" {
		fields["description"] = description
	}
	if filename == "" {
		filename = "crop.jpg"
	}

	var res DiagnosisResult
	err := c.postMultipart(ctx, PathCropDiagnosis, fields,
		[]formFile{{field: "image", filename: filename, data: image}},
		&res,
	)
	if err != nil {
		log.Error("Crop diagnosis error", "error", err)
		return mockDiagnosisResult()
	}
	return res
}

// GetMarketPrices returns mandi prices for crop. An empty location means
// DefaultLocation.
func (c *Client) GetMarketPrices(ctx context.Context, crop, location string) MarketResult {
	if location == "" {
		location = DefaultLocation
	}

	key := cacheKey("market", crop, location)
	var cached MarketResult
	if c.cache != nil && c.cache.GetInto(key, &cached) {
		log.Debug("market prices served from cache", "crop", crop)
		return cached
	}

	var res MarketResult
	if err := c.postJSON(ctx, PathMarketAdvisory, marketRequest{Crop: crop, Location: location}, &res); err != nil {
		log.Error("Market advisory error", "error", err)
		return mockMarketResult(crop)
	}

	c.remember(key, res)
	return res
}

// GetSchemeInfo looks up government schemes matching query. profile is
// optional; queries with a profile are not memoized.
func (c *Client) GetSchemeInfo(ctx context.Context, query string, profile *FarmerProfile) SchemeResult {
	key := ""
	if profile == nil {
		key = cacheKey("schemes", query)
		var cached SchemeResult
		if c.cache != nil && c.cache.GetInto(key, &cached) {
			log.Debug("schemes served from cache", "query", query)
			return cached
		}
	}

	var res SchemeResult
	if err := c.postJSON(ctx, PathSchemeNavigator, schemeRequest{Query: query, FarmerProfile: profile}, &res); err != nil {
		log.Error("Scheme navigator error", "error", err)
		return mockSchemeResult()
	}

	if key != "" {
		c.remember(key, res)
	}
	return res
}

// remember stores a real server response. Mock payloads never reach here.
func (c *Client) remember(key string, v any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(key, v, c.cacheTTL); err != nil {
		log.Warn("unable to cache response", "key", key, "error", err)
	}
}

func cacheKey(kind string, parts ...string) string {
	norm := make([]string, 0, len(parts)+1)
	norm = append(norm, kind)
	for _, p := range parts {
		norm = append(norm, strings.ToLower(strings.Join(strings.Fields(p), " ")))
	}
	return strings.Join(norm, ":")
}
