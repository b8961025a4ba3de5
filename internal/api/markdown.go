package api

import (
	"fmt"
	"strings"
)

const offlineNote = "\n> Showing offline sample data. Connect to the internet for live results.\n"

// Markdown renders the diagnosis for display.
func (r DiagnosisResult) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Crop Diagnosis\n\n**%s**\n\n", r.Diagnosis)
	fmt.Fprintf(&b, "| Confidence | Severity | Treatment cost |\n|---|---|---|\n| %.0f%% | %s | %s |\n\n",
		r.Confidence, orDash(r.Severity), orDash(r.TreatmentCost))
	if len(r.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	if r.Fallback {
		b.WriteString(offlineNote)
	}
	return b.String()
}

// Summary is a one-line description for history lists.
func (r DiagnosisResult) Summary() string {
	return r.Diagnosis
}

// Markdown renders the market advisory for display.
func (r MarketResult) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Market Prices: %s\n\n", titleCase(r.Crop))
	fmt.Fprintf(&b, "**%s** (%s)\n\n", r.CurrentPrice, r.PriceTrend)
	if len(r.BestMarkets) > 0 {
		b.WriteString("## Best Markets\n\n| Market | Price | Distance |\n|---|---|---|\n")
		for _, m := range r.BestMarkets {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", m.Name, m.Price, m.Distance)
		}
		b.WriteString("\n")
	}
	if r.Forecast != "" {
		fmt.Fprintf(&b, "**Forecast:** %s\n\n", r.Forecast)
	}
	if r.Demand != "" {
		fmt.Fprintf(&b, "**Demand:** %s\n", r.Demand)
	}
	if r.Fallback {
		b.WriteString(offlineNote)
	}
	return b.String()
}

// Summary is a one-line description for history lists.
func (r MarketResult) Summary() string {
	return fmt.Sprintf("Current %s price: %s. %s", r.Crop, r.CurrentPrice, r.PriceTrend)
}

// Markdown renders the scheme list for display.
func (r SchemeResult) Markdown() string {
	var b strings.Builder
	b.WriteString("# Government Schemes\n\n")
	if len(r.EligibleSchemes) == 0 {
		b.WriteString("No matching schemes found.\n\n")
	}
	for _, s := range r.EligibleSchemes {
		fmt.Fprintf(&b, "## %s\n\n", s.Name)
		if s.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", s.Description)
		}
		fmt.Fprintf(&b, "- **Benefit:** %s\n- **Eligibility:** %s\n- **How to apply:** %s\n- **Status:** %s\n\n",
			orDash(s.Benefit), orDash(s.Eligibility), orDash(s.ApplicationProcess), orDash(s.Status))
	}
	if len(r.NextSteps) > 0 {
		b.WriteString("## Next Steps\n\n")
		for i, step := range r.NextSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	if r.Fallback {
		b.WriteString(offlineNote)
	}
	return b.String()
}

// Summary is a one-line description for history lists.
func (r SchemeResult) Summary() string {
	if len(r.EligibleSchemes) == 0 {
		return "No matching schemes found"
	}
	names := make([]string, len(r.EligibleSchemes))
	for i, s := range r.EligibleSchemes {
		names[i] = s.Name
	}
	return "Eligible: " + strings.Join(names, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
