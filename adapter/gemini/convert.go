package gemini

import (
	"math"
	"slices"

	"github.com/skosovsky/genbridge"

	"google.golang.org/genai"
)

// GenerateConfig builds the request config shared by every call on a model handle.
func GenerateConfig(cfg genbridge.ModelConfig) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if cfg.Temperature != nil {
		t := float32(*cfg.Temperature)
		config.Temperature = &t
	}
	if cfg.TopK != nil {
		k := float32(*cfg.TopK)
		config.TopK = &k
	}
	if cfg.TopP != nil {
		p := float32(*cfg.TopP)
		config.TopP = &p
	}
	if cfg.MaxOutputTokens != nil {
		switch n := *cfg.MaxOutputTokens; {
		case n > math.MaxInt32:
			config.MaxOutputTokens = math.MaxInt32
		case n < math.MinInt32:
			config.MaxOutputTokens = math.MinInt32
		default:
			config.MaxOutputTokens = int32(n)
		}
	}
	if len(cfg.StopSequences) > 0 {
		config.StopSequences = slices.Clone(cfg.StopSequences)
	}
	config.SafetySettings = SafetySettings(cfg.SafetySettings)
	return config
}

// ToGenaiParts converts parts in order. Part types the SDK cannot carry are skipped.
func ToGenaiParts(parts []genbridge.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch x := p.(type) {
		case genbridge.TextPart:
			out = append(out, genai.NewPartFromText(x.Text))
		case genbridge.InlineDataPart:
			out = append(out, genai.NewPartFromBytes(x.Data, x.MIMEType))
		}
	}
	return out
}

// ToGenaiContents converts turns in order.
func ToGenaiContents(contents []genbridge.Content) []*genai.Content {
	out := make([]*genai.Content, 0, len(contents))
	for _, c := range contents {
		out = append(out, genai.NewContentFromParts(ToGenaiParts(c.Parts), genai.Role(c.Role)))
	}
	return out
}

// FromGenaiContents converts SDK turns back, in order. Inline data parts keep their bytes and MIME
// type; every other part becomes a TextPart carrying its text (empty for function calls and the like).
func FromGenaiContents(contents []*genai.Content) []genbridge.Content {
	out := make([]genbridge.Content, 0, len(contents))
	for _, c := range contents {
		if c == nil {
			continue
		}
		parts := make([]genbridge.Part, 0, len(c.Parts))
		for _, p := range c.Parts {
			if p == nil {
				continue
			}
			if p.InlineData != nil {
				parts = append(parts, genbridge.InlineDataPart{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data})
				continue
			}
			parts = append(parts, genbridge.TextPart{Text: p.Text})
		}
		out = append(out, genbridge.Content{Role: genbridge.Role(c.Role), Parts: parts})
	}
	return out
}

func partValues(parts []genbridge.Part) []genai.Part {
	ptrs := ToGenaiParts(parts)
	out := make([]genai.Part, 0, len(ptrs))
	for _, p := range ptrs {
		out = append(out, *p)
	}
	return out
}

// MergeReplyChunks folds consecutive model turns into one. The SDK records each streamed chunk
// of a reply as its own model Content; adjacent text parts are concatenated.
func MergeReplyChunks(contents []genbridge.Content) []genbridge.Content {
	out := make([]genbridge.Content, 0, len(contents))
	for _, c := range contents {
		n := len(out)
		if n == 0 || c.Role != genbridge.RoleModel || out[n-1].Role != genbridge.RoleModel {
			out = append(out, genbridge.Content{Role: c.Role, Parts: slices.Clone(c.Parts)})
			continue
		}
		prev := &out[n-1]
		for _, p := range c.Parts {
			if len(prev.Parts) > 0 {
				last, lastOK := prev.Parts[len(prev.Parts)-1].(genbridge.TextPart)
				next, nextOK := p.(genbridge.TextPart)
				if lastOK && nextOK {
					prev.Parts[len(prev.Parts)-1] = genbridge.TextPart{Text: last.Text + next.Text}
					continue
				}
			}
			prev.Parts = append(prev.Parts, p)
		}
	}
	return out
}
