package content

// Tool ids.
const (
	ToolCropDiagnosis    = "crop-diagnosis"
	ToolMarketAdvisory   = "market-advisory"
	ToolSubsidyNavigator = "subsidy-navigator"
	ToolVoiceAssistant   = "voice-assistant"
)

// ActionKind is what a tool popup button does.
type ActionKind string

const (
	ActionUpload ActionKind = "upload"
	ActionCamera ActionKind = "camera"
	ActionVoice  ActionKind = "voice"
	ActionText   ActionKind = "text"
)

// Action is one control in a tool popup.
type Action struct {
	Kind        ActionKind
	Label       string
	Placeholder string // text actions only
}

// Tool is a quick tool on the home screen.
type Tool struct {
	ID          string
	Name        string
	Description string
	Features    []string
	Actions     []Action
	Hint        string
}

// TextAction returns the tool's text action, if it has one.
func (t Tool) TextAction() (Action, bool) {
	for _, a := range t.Actions {
		if a.Kind == ActionText {
			return a, true
		}
	}
	return Action{}, false
}

var tools = []Tool{
	{
		ID:          ToolCropDiagnosis,
		Name:        "Crop Diagnosis",
		Description: "AI-powered crop health analysis",
		Features: []string{
			"Upload crop photos",
			"Instant disease detection",
			"Treatment recommendations",
			"Preventive measures",
		},
		Actions: []Action{
			{Kind: ActionUpload, Label: "Upload Photo"},
			{Kind: ActionCamera, Label: "Take Photo"},
		},
		Hint: "Upload clear photos of affected crop parts for accurate diagnosis",
	},
	{
		ID:          ToolMarketAdvisory,
		Name:        "Market Advisory",
		Description: "Real-time market prices & trends",
		Features: []string{
			"Live mandi prices",
			"Price trend analysis",
			"Best selling locations",
			"Demand forecasts",
		},
		Actions: []Action{
			{Kind: ActionText, Label: "Get Prices", Placeholder: "Enter crop name (e.g., wheat, rice)"},
			{Kind: ActionVoice, Label: "Ask via Voice"},
		},
	},
	{
		ID:          ToolSubsidyNavigator,
		Name:        "Subsidy Navigator",
		Description: "Government schemes & subsidies",
		Features: []string{
			"Scheme eligibility check",
			"Application assistance",
			"Document requirements",
			"Status tracking",
		},
		Actions: []Action{
			{Kind: ActionText, Label: "Find Schemes", Placeholder: "Describe your farming situation"},
			{Kind: ActionVoice, Label: "Speak Your Query"},
		},
	},
	{
		ID:          ToolVoiceAssistant,
		Name:        "Voice Assistant",
		Description: "Multilingual farming assistant",
		Features: []string{
			"Voice commands",
			"Multiple languages",
			"Natural conversations",
			"Instant responses",
		},
		Actions: []Action{
			{Kind: ActionVoice, Label: "Start Voice Chat"},
			{Kind: ActionText, Label: "Send", Placeholder: "Type your farming question..."},
		},
	},
}

// Tools returns the quick tools in display order.
func Tools() []Tool {
	out := make([]Tool, len(tools))
	copy(out, tools)
	return out
}

// ToolByID looks up a tool.
func ToolByID(id string) (Tool, bool) {
	for _, t := range tools {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// Feature is one slide of the splash carousel.
type Feature struct {
	Title       string
	Description string
}

// SplashFeatures returns the carousel slides.
func SplashFeatures() []Feature {
	return []Feature{
		{
			Title:       "Diagnose Crop Issues",
			Description: "Upload photos of your crops for instant AI-powered health analysis and treatment recommendations",
		},
		{
			Title:       "Real-time Mandi Prices",
			Description: "Get live market prices for your crops across different mandis to make informed selling decisions",
		},
		{
			Title:       "Government Schemes",
			Description: "Discover subsidies and schemes you're eligible for with personalized recommendations",
		},
		{
			Title:       "Voice Assistant",
			Description: "Speak naturally in your language - Hindi, Telugu, Kannada, or English for instant help",
		},
	}
}
