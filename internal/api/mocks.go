package api

// Offline payloads substituted when a remote call fails. Each call returns
// a fresh value so callers may mutate what they get.

func mockVoiceResult() VoiceResult {
	return VoiceResult{
		Text:     "Mock transcription: How are my wheat crops doing?",
		Response: "Your wheat crops look healthy! Consider checking soil moisture levels.",
		AudioURL: nil,
		Fallback: true,
	}
}

func mockDiagnosisResult() DiagnosisResult {
	return DiagnosisResult{
		Diagnosis:  "Nitrogen Deficiency detected",
		Confidence: 85,
		Recommendations: []string{
			"Apply urea fertilizer at 50 kg/acre",
			"Increase watering frequency",
			"Monitor for 7-10 days",
		},
		Severity:      "Moderate",
		TreatmentCost: "₹500-800 per acre",
		Fallback:      true,
	}
}

func mockMarketResult(crop string) MarketResult {
	return MarketResult{
		Crop:         crop,
		CurrentPrice: "₹2,450 per quintal",
		PriceTrend:   "+15% from last week",
		BestMarkets: []Market{
			{Name: "Bangalore APMC", Price: "₹2,450", Distance: "25 km"},
			{Name: "Mysore Mandi", Price: "₹2,380", Distance: "45 km"},
			{Name: "Tumkur Market", Price: "₹2,420", Distance: "35 km"},
		},
		Forecast: "Prices expected to rise by 8-12% next week",
		Demand:   "High demand expected due to festival season",
		Fallback: true,
	}
}

func mockSchemeResult() SchemeResult {
	return SchemeResult{
		EligibleSchemes: []Scheme{
			{
				Name:               "PM-KISAN",
				Description:        "Income support to farmer families",
				Benefit:            "₹6,000 per year",
				Eligibility:        "All landholding farmers",
				ApplicationProcess: "Online through PM-KISAN portal",
				Status:             "Eligible",
			},
			{
				Name:               "Pradhan Mantri Fasal Bima Yojana",
				Description:        "Crop insurance scheme",
				Benefit:            "Up to ₹2 lakh coverage",
				Eligibility:        "All farmers",
				ApplicationProcess: "Through banks or insurance companies",
				Status:             "Apply before sowing season",
			},
		},
		NextSteps: []string{
			"Gather required documents (Aadhaar, land records)",
			"Visit nearest CSC or apply online",
			"Keep payment receipts for reference",
		},
		Fallback: true,
	}
}
