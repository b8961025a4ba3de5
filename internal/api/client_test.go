package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/mykisan/kisan/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is a stand-in for the remote farming tools.
type fakeService struct {
	server *httptest.Server
	calls  map[string]*atomic.Int32

	lastMarket  marketRequest
	lastScheme  schemeRequest
	schemeKeys  []string
	lastForm    map[string]string
	lastUpload  []byte
	lastUpField string
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	fs := &fakeService{calls: map[string]*atomic.Int32{}}
	for _, p := range []string{PathSpeak, PathCropDiagnosis, PathMarketAdvisory, PathSchemeNavigator} {
		fs.calls[p] = &atomic.Int32{}
	}

	r := mux.NewRouter()
	r.HandleFunc(PathMarketAdvisory, func(w http.ResponseWriter, r *http.Request) {
		fs.calls[PathMarketAdvisory].Add(1)
		_ = json.NewDecoder(r.Body).Decode(&fs.lastMarket)
		writeJSON(w, MarketResult{
			Crop:         fs.lastMarket.Crop,
			CurrentPrice: "₹3,100 per quintal",
			PriceTrend:   "-2% from last week",
			BestMarkets:  []Market{{Name: "Hubli APMC", Price: "₹3,100", Distance: "12 km"}},
			Forecast:     "Stable",
			Demand:       "Moderate",
		})
	}).Methods(http.MethodPost)

	r.HandleFunc(PathSchemeNavigator, func(w http.ResponseWriter, r *http.Request) {
		fs.calls[PathSchemeNavigator].Add(1)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &fs.lastScheme)
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(body, &fields)
		fs.schemeKeys = fs.schemeKeys[:0]
		for k := range fields {
			fs.schemeKeys = append(fs.schemeKeys, k)
		}
		writeJSON(w, SchemeResult{
			EligibleSchemes: []Scheme{{Name: "Soil Health Card", Status: "Eligible"}},
			NextSteps:       []string{"Visit the Krishi Kendra"},
		})
	}).Methods(http.MethodPost)

	upload := func(field string, respond func(http.ResponseWriter)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f, _, err := r.FormFile(field)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer f.Close()
			fs.lastUpload, _ = io.ReadAll(f)
			fs.lastUpField = field
			fs.lastForm = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				fs.lastForm[k] = v[0]
			}
			respond(w)
		}
	}

	r.HandleFunc(PathSpeak, func(w http.ResponseWriter, r *http.Request) {
		fs.calls[PathSpeak].Add(1)
		upload("audio", func(w http.ResponseWriter) {
			writeJSON(w, VoiceResult{Text: "wheat prices", Response: "Wheat is ₹2,300"})
		})(w, r)
	}).Methods(http.MethodPost)

	r.HandleFunc(PathCropDiagnosis, func(w http.ResponseWriter, r *http.Request) {
		fs.calls[PathCropDiagnosis].Add(1)
		upload("image", func(w http.ResponseWriter) {
			writeJSON(w, DiagnosisResult{Diagnosis: "Leaf rust", Confidence: 91, Severity: "High"})
		})(w, r)
	}).Methods(http.MethodPost)

	fs.server = httptest.NewServer(r)
	t.Cleanup(fs.server.Close)
	return fs
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// unreachableURL returns the address of a server that is already closed.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestBaseURLFor(t *testing.T) {
	assert.Equal(t, ProductionURL, BaseURLFor("production"))
	assert.Equal(t, ProductionURL, BaseURLFor(" Production "))
	assert.Equal(t, DevelopmentURL, BaseURLFor("development"))
	assert.Equal(t, DevelopmentURL, BaseURLFor(""))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{Environment: "production"})
	assert.Equal(t, ProductionURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.Timeout())

	c = NewClient(Config{BaseURL: "http://example.test/", Timeout: time.Second})
	assert.Equal(t, "http://example.test", c.BaseURL())
	assert.Equal(t, time.Second, c.Timeout())
}

func TestGetMarketPrices_TransportFailureReturnsMock(t *testing.T) {
	c := NewClient(Config{BaseURL: unreachableURL(t)})

	res := c.GetMarketPrices(context.Background(), "rice", "")

	assert.True(t, res.Fallback)
	assert.Equal(t, "rice", res.Crop)
	assert.NotEmpty(t, res.CurrentPrice)
	assert.NotEmpty(t, res.PriceTrend)
	assert.Len(t, res.BestMarkets, 3)
	assert.NotEmpty(t, res.Forecast)
	assert.NotEmpty(t, res.Demand)

	// The wire shape carries exactly the documented keys.
	raw, err := json.Marshal(res)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	var keys []string
	for k := range fields {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"crop", "current_price", "price_trend", "best_markets", "forecast", "demand"}, keys)
}

func TestGetMarketPrices_ServerErrorReturnsMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	res := c.GetMarketPrices(context.Background(), "ragi", "Mysore")
	assert.True(t, res.Fallback)
	assert.Equal(t, "ragi", res.Crop)
}

func TestGetMarketPrices_TimeoutReturnsMock(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	res := c.GetMarketPrices(context.Background(), "maize", "")
	assert.True(t, res.Fallback)
	assert.Equal(t, "maize", res.Crop)
}

func TestGetMarketPrices_DefaultLocation(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL})

	res := c.GetMarketPrices(context.Background(), "wheat", "")
	assert.False(t, res.Fallback)
	assert.Equal(t, "wheat", res.Crop)
	assert.Equal(t, marketRequest{Crop: "wheat", Location: DefaultLocation}, fs.lastMarket)
}

func TestGetMarketPrices_CachesRealResponsesOnly(t *testing.T) {
	fs := newFakeService(t)
	store := cache.NewMemoryStore()
	c := NewClient(Config{BaseURL: fs.server.URL, Cache: cache.New(store)})

	first := c.GetMarketPrices(context.Background(), "Wheat", "Hubli")
	second := c.GetMarketPrices(context.Background(), "wheat", "hubli")

	assert.Equal(t, int32(1), fs.calls[PathMarketAdvisory].Load())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached response differs (-first +second):\n%s", diff)
	}

	// A failing client must not write mocks into the cache.
	offline := NewClient(Config{BaseURL: unreachableURL(t), Cache: cache.New(store)})
	res := offline.GetMarketPrices(context.Background(), "jowar", "")
	assert.True(t, res.Fallback)

	keys, err := cache.New(store).Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"market:wheat:hubli"}, keys)
}

func TestGetSchemeInfo(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL, Cache: cache.New(cache.NewMemoryStore())})

	profile := &FarmerProfile{Name: "Ravi Kumar", State: "Karnataka"}
	res := c.GetSchemeInfo(context.Background(), "irrigation subsidy", profile)
	assert.False(t, res.Fallback)
	require.Len(t, res.EligibleSchemes, 1)
	assert.Equal(t, "Soil Health Card", res.EligibleSchemes[0].Name)
	assert.Equal(t, "irrigation subsidy", fs.lastScheme.Query)
	require.NotNil(t, fs.lastScheme.FarmerProfile)
	assert.Equal(t, "Karnataka", fs.lastScheme.FarmerProfile.State)

	// With a profile nothing is memoized.
	c.GetSchemeInfo(context.Background(), "irrigation subsidy", profile)
	assert.Equal(t, int32(2), fs.calls[PathSchemeNavigator].Load())
}

func TestGetSchemeInfo_OmitsMissingProfile(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL})

	res := c.GetSchemeInfo(context.Background(), "drip irrigation", nil)
	assert.False(t, res.Fallback)
	assert.Equal(t, []string{"query"}, fs.schemeKeys)

	c.GetSchemeInfo(context.Background(), "drip irrigation", &FarmerProfile{State: "Karnataka"})
	assert.ElementsMatch(t, []string{"query", "farmer_profile"}, fs.schemeKeys)
}

func TestGetSchemeInfo_FailureReturnsMock(t *testing.T) {
	c := NewClient(Config{BaseURL: unreachableURL(t)})
	res := c.GetSchemeInfo(context.Background(), "pm kisan", nil)

	assert.True(t, res.Fallback)
	require.Len(t, res.EligibleSchemes, 2)
	assert.Equal(t, "PM-KISAN", res.EligibleSchemes[0].Name)
	assert.Len(t, res.NextSteps, 3)
}

func TestDiagnoseCrop(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL})

	res := c.DiagnoseCrop(context.Background(), "leaf.jpg", []byte("jpeg-bytes"), "yellow spots")
	assert.False(t, res.Fallback)
	assert.Equal(t, "Leaf rust", res.Diagnosis)
	assert.Equal(t, "image", fs.lastUpField)
	assert.Equal(t, []byte("jpeg-bytes"), fs.lastUpload)
	assert.Equal(t, "yellow spots", fs.lastForm["description"])
}

func TestDiagnoseCrop_OmitsEmptyDescription(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL})

	c.DiagnoseCrop(context.Background(), "", []byte("x"), "")
	_, present := fs.lastForm["description"]
	assert.False(t, present)
}

func TestDiagnoseCrop_EmptyImageReturnsMock(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL})

	res := c.DiagnoseCrop(context.Background(), "leaf.jpg", nil, "")
	assert.True(t, res.Fallback)
	assert.Equal(t, float64(85), res.Confidence)
	assert.Equal(t, int32(0), fs.calls[PathCropDiagnosis].Load())
}

func TestTranscribe(t *testing.T) {
	fs := newFakeService(t)
	c := NewClient(Config{BaseURL: fs.server.URL})

	res, err := c.Transcribe(context.Background(), []byte("RIFF"), "kn-IN")
	require.NoError(t, err)
	assert.Equal(t, "wheat prices", res.Text)
	assert.Equal(t, "kn-IN", fs.lastForm["language"])
	assert.Equal(t, "audio", fs.lastUpField)
}

func TestTranscribe_FailureIsReported(t *testing.T) {
	c := NewClient(Config{BaseURL: unreachableURL(t)})

	_, err := c.Transcribe(context.Background(), []byte("RIFF"), "en")
	require.Error(t, err)

	// ProcessVoice masks the same failure.
	res := c.ProcessVoice(context.Background(), []byte("RIFF"), "en")
	assert.True(t, res.Fallback)
	assert.Contains(t, res.Text, "wheat")
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Path: PathSpeak, StatusCode: 502}
	assert.Equal(t, "/tts_stt_tool/speak: HTTP 502", err.Error())

	err.Body = "bad gateway"
	assert.Equal(t, "/tts_stt_tool/speak: HTTP 502: bad gateway", err.Error())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "market:wheat:north karnataka", cacheKey("market", " Wheat ", "North   Karnataka"))
}
