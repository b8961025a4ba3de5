package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTools(t *testing.T) {
	tools := Tools()
	require.Len(t, tools, 4)
	ids := make([]string, len(tools))
	for i, tool := range tools {
		ids[i] = tool.ID
		assert.Len(t, tool.Features, 4, tool.ID)
	}
	assert.Equal(t, []string{ToolCropDiagnosis, ToolMarketAdvisory, ToolSubsidyNavigator, ToolVoiceAssistant}, ids)

	crop, ok := ToolByID(ToolCropDiagnosis)
	require.True(t, ok)
	_, hasText := crop.TextAction()
	assert.False(t, hasText)
	assert.Equal(t, ActionUpload, crop.Actions[0].Kind)

	market, _ := ToolByID(ToolMarketAdvisory)
	text, ok := market.TextAction()
	require.True(t, ok)
	assert.Contains(t, text.Placeholder, "wheat")

	_, ok = ToolByID("weather")
	assert.False(t, ok)

	// Callers get a copy.
	tools[0].Name = "changed"
	assert.Equal(t, "Crop Diagnosis", Tools()[0].Name)
}

func TestSplashFeatures(t *testing.T) {
	f := SplashFeatures()
	require.Len(t, f, 4)
	assert.Equal(t, "Voice Assistant", f[3].Title)
}

func TestTipsCatalogue(t *testing.T) {
	tips, err := Tips()
	require.NoError(t, err)
	require.Len(t, tips, 6)
	assert.Equal(t, "Optimal Soil pH for Better Crop Yield", tips[0].Title)
	assert.Equal(t, "5 min read", tips[0].ReadTime)
	assert.NotEmpty(t, tips[0].Content)
	assert.Contains(t, tips[0].Markdown(), "# 🌱 Optimal Soil pH")

	cats, err := Categories()
	require.NoError(t, err)
	require.Len(t, cats, 5)
	assert.Equal(t, CategoryAll, cats[0].ID)
}

func TestFilterTips(t *testing.T) {
	tips, err := Tips()
	require.NoError(t, err)

	assert.Len(t, FilterTips(tips, CategoryAll), 6)
	assert.Len(t, FilterTips(tips, ""), 6)

	crops := FilterTips(tips, "crops")
	require.Len(t, crops, 2)
	assert.Equal(t, "3", crops[0].ID)
	assert.Equal(t, "5", crops[1].ID)

	assert.Len(t, FilterTips(tips, "Weather"), 2)
	assert.Empty(t, FilterTips(tips, "livestock"))
}

func TestSearchTips(t *testing.T) {
	tips, err := Tips()
	require.NoError(t, err)

	got := SearchTips(tips, "monsoon")
	require.NotEmpty(t, got)
	assert.Equal(t, "Monsoon Preparation Checklist", got[0].Title)

	got = SearchTips(tips, "wheat")
	require.NotEmpty(t, got)
	assert.Equal(t, "3", got[0].ID)

	assert.Len(t, SearchTips(tips, "  "), 6)
	assert.Empty(t, SearchTips(tips, "zzzzqqq"))
}

func TestSettingsGroups(t *testing.T) {
	groups := SettingsGroups()
	require.Len(t, groups, 3)
	var toggles []string
	for _, g := range groups {
		for _, it := range g.Items {
			if it.Action == SettingsToggle {
				toggles = append(toggles, it.Key)
			}
		}
	}
	assert.Equal(t, []string{KeyNotifications, KeyVoiceResponses, KeyDarkMode}, toggles)
}
