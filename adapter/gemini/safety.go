package gemini

import (
	"github.com/skosovsky/genbridge"

	"google.golang.org/genai"
)

// HarmCategoryToGenai maps a host harm category to the SDK category.
// Unknown and unspecified values map to genai.HarmCategoryUnspecified.
func HarmCategoryToGenai(c genbridge.HarmCategory) genai.HarmCategory {
	switch c {
	case genbridge.HarmCategoryHarassment:
		return genai.HarmCategoryHarassment
	case genbridge.HarmCategoryHateSpeech:
		return genai.HarmCategoryHateSpeech
	case genbridge.HarmCategorySexuallyExplicit:
		return genai.HarmCategorySexuallyExplicit
	case genbridge.HarmCategoryDangerousContent:
		return genai.HarmCategoryDangerousContent
	default:
		return genai.HarmCategoryUnspecified
	}
}

// BlockLevelToGenai maps a host block level to the SDK threshold.
// Unknown and unspecified values map to genai.HarmBlockThresholdUnspecified.
func BlockLevelToGenai(l genbridge.BlockLevel) genai.HarmBlockThreshold {
	switch l {
	case genbridge.BlockNone:
		return genai.HarmBlockThresholdBlockNone
	case genbridge.BlockOnlyHigh:
		return genai.HarmBlockThresholdBlockOnlyHigh
	case genbridge.BlockMediumAndAbove:
		return genai.HarmBlockThresholdBlockMediumAndAbove
	case genbridge.BlockLowAndAbove:
		return genai.HarmBlockThresholdBlockLowAndAbove
	default:
		return genai.HarmBlockThresholdUnspecified
	}
}

// SafetySettings converts settings in order. Returns nil for no settings.
func SafetySettings(settings []genbridge.SafetySetting) []*genai.SafetySetting {
	if len(settings) == 0 {
		return nil
	}
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, s := range settings {
		out = append(out, &genai.SafetySetting{
			Category:  HarmCategoryToGenai(s.Category),
			Threshold: BlockLevelToGenai(s.Level),
		})
	}
	return out
}
