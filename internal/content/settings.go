package content

// SettingsAction is what selecting a settings row does.
type SettingsAction string

const (
	SettingsNavigate SettingsAction = "navigate"
	SettingsToggle   SettingsAction = "toggle"
)

// Toggle keys, shared with the settings package.
const (
	KeyNotifications  = "notifications"
	KeyVoiceResponses = "voice_responses"
	KeyDarkMode       = "dark_mode"
)

// SettingsItem is one row of the settings screen.
type SettingsItem struct {
	Label       string
	Description string
	Action      SettingsAction
	Key         string // toggles only
}

// SettingsGroup is a titled block of rows.
type SettingsGroup struct {
	Title string
	Items []SettingsItem
}

// SettingsGroups returns the settings screen layout.
func SettingsGroups() []SettingsGroup {
	return []SettingsGroup{
		{
			Title: "Account",
			Items: []SettingsItem{
				{Label: "Profile Settings", Description: "Manage your personal information", Action: SettingsNavigate},
				{Label: "Language", Description: "English", Action: SettingsNavigate, Key: "language"},
			},
		},
		{
			Title: "Preferences",
			Items: []SettingsItem{
				{Label: "Notifications", Description: "Push notifications for important updates", Action: SettingsToggle, Key: KeyNotifications},
				{Label: "Voice Responses", Description: "Enable text-to-speech for AI responses", Action: SettingsToggle, Key: KeyVoiceResponses},
				{Label: "Dark Mode", Description: "Switch to dark theme", Action: SettingsToggle, Key: KeyDarkMode},
			},
		},
		{
			Title: "Support",
			Items: []SettingsItem{
				{Label: "Help Center", Description: "Get help and support", Action: SettingsNavigate},
				{Label: "Contact Support", Description: "Reach out to our team", Action: SettingsNavigate},
				{Label: "Privacy Policy", Description: "Read our privacy policy", Action: SettingsNavigate},
			},
		},
	}
}
