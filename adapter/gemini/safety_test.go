package gemini

import (
	"testing"

	"github.com/skosovsky/genbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestHarmCategoryToGenai(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   genbridge.HarmCategory
		want genai.HarmCategory
	}{
		{genbridge.HarmCategoryHarassment, genai.HarmCategoryHarassment},
		{genbridge.HarmCategoryHateSpeech, genai.HarmCategoryHateSpeech},
		{genbridge.HarmCategorySexuallyExplicit, genai.HarmCategorySexuallyExplicit},
		{genbridge.HarmCategoryDangerousContent, genai.HarmCategoryDangerousContent},
		{genbridge.HarmCategoryUnspecified, genai.HarmCategoryUnspecified},
		{"", genai.HarmCategoryUnspecified},
		{"CIVIC_INTEGRITY_TYPO", genai.HarmCategoryUnspecified},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HarmCategoryToGenai(tt.in))
			assert.Equal(t, tt.want, HarmCategoryToGenai(tt.in), "mapping must be pure")
		})
	}
}

func TestBlockLevelToGenai(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   genbridge.BlockLevel
		want genai.HarmBlockThreshold
	}{
		{genbridge.BlockNone, genai.HarmBlockThresholdBlockNone},
		{genbridge.BlockOnlyHigh, genai.HarmBlockThresholdBlockOnlyHigh},
		{genbridge.BlockMediumAndAbove, genai.HarmBlockThresholdBlockMediumAndAbove},
		{genbridge.BlockLowAndAbove, genai.HarmBlockThresholdBlockLowAndAbove},
		{genbridge.BlockUnspecified, genai.HarmBlockThresholdUnspecified},
		{"", genai.HarmBlockThresholdUnspecified},
		{"block_none", genai.HarmBlockThresholdUnspecified},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, BlockLevelToGenai(tt.in))
		})
	}
}

func TestSafetySettings_PreservesOrder(t *testing.T) {
	t.Parallel()
	got := SafetySettings([]genbridge.SafetySetting{
		{Category: genbridge.HarmCategoryDangerousContent, Level: genbridge.BlockOnlyHigh},
		{Category: genbridge.HarmCategoryHarassment, Level: genbridge.BlockNone},
	})
	require.Len(t, got, 2)
	assert.Equal(t, genai.HarmCategoryDangerousContent, got[0].Category)
	assert.Equal(t, genai.HarmBlockThresholdBlockOnlyHigh, got[0].Threshold)
	assert.Equal(t, genai.HarmCategoryHarassment, got[1].Category)
	assert.Equal(t, genai.HarmBlockThresholdBlockNone, got[1].Threshold)
}

func TestSafetySettings_Empty(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SafetySettings(nil))
}
