package api

// VoiceResult is the response of the speech processing endpoint.
type VoiceResult struct {
	Text     string  `json:"text"`
	Response string  `json:"response"`
	AudioURL *string `json:"audioUrl"`

	// Fallback is set when the payload is the offline mock rather than a
	// server response.
	Fallback bool `json:"-"`
}

// DiagnosisResult is the response of the crop diagnosis tool.
type DiagnosisResult struct {
	Diagnosis       string   `json:"diagnosis"`
	Confidence      float64  `json:"confidence"`
	Recommendations []string `json:"recommendations"`
	Severity        string   `json:"severity"`
	TreatmentCost   string   `json:"treatment_cost"`

	Fallback bool `json:"-"`
}

// Market is one mandi quote in a market advisory.
type Market struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Distance string `json:"distance"`
}

// MarketResult is the response of the market advisory tool.
type MarketResult struct {
	Crop         string   `json:"crop"`
	CurrentPrice string   `json:"current_price"`
	PriceTrend   string   `json:"price_trend"`
	BestMarkets  []Market `json:"best_markets"`
	Forecast     string   `json:"forecast"`
	Demand       string   `json:"demand"`

	Fallback bool `json:"-"`
}

// Scheme is a government scheme the farmer may be eligible for.
type Scheme struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Benefit            string `json:"benefit"`
	Eligibility        string `json:"eligibility"`
	ApplicationProcess string `json:"application_process"`
	Status             string `json:"status"`
}

// SchemeResult is the response of the scheme navigator tool.
type SchemeResult struct {
	EligibleSchemes []Scheme `json:"eligible_schemes"`
	NextSteps       []string `json:"next_steps"`

	Fallback bool `json:"-"`
}

// FarmerProfile is optional context sent with scheme queries.
type FarmerProfile struct {
	Name      string   `json:"name,omitempty"`
	State     string   `json:"state,omitempty"`
	District  string   `json:"district,omitempty"`
	LandAcres float64  `json:"land_acres,omitempty"`
	Crops     []string `json:"crops,omitempty"`
}

type marketRequest struct {
	Crop     string `json:"crop"`
	Location string `json:"location"`
}

type schemeRequest struct {
	Query         string         `json:"query"`
	FarmerProfile *FarmerProfile `json:"farmer_profile,omitempty"`
}
