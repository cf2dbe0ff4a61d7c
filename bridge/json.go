package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/internal/cast"
)

type configJSON struct {
	ModelName       string          `json:"modelName"`
	APIKey          string          `json:"apiKey"`
	Temperature     *float64        `json:"temperature"`
	TopK            *float64        `json:"topK"`
	TopP            *float64        `json:"topP"`
	MaxOutputTokens *json.Number    `json:"maxOutputTokens"`
	StopSequences   []string        `json:"stopSequences"`
	SafetySettings  json.RawMessage `json:"safetySettings"`
}

type imageJSON struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type historyItemJSON struct {
	IsUser bool        `json:"isUser"`
	Text   string      `json:"text"`
	Images []imageJSON `json:"images"`
}

type partJSON struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type turnJSON struct {
	IsUser bool       `json:"isUser"`
	Parts  []partJSON `json:"parts"`
}

func invalid(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidArgument, what, err)
}

func decodeConfig(s string) (genbridge.ModelConfig, error) {
	var c configJSON
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&c); err != nil {
		return genbridge.ModelConfig{}, invalid("config", err)
	}
	cfg := genbridge.ModelConfig{
		ModelName:     c.ModelName,
		APIKey:        c.APIKey,
		Temperature:   c.Temperature,
		TopK:          c.TopK,
		TopP:          c.TopP,
		StopSequences: c.StopSequences,
	}
	if c.MaxOutputTokens != nil {
		n, ok := cast.ToInt64(*c.MaxOutputTokens)
		if !ok {
			return genbridge.ModelConfig{}, fmt.Errorf("%w: config: maxOutputTokens must be an integer", ErrInvalidArgument)
		}
		cfg.MaxOutputTokens = &n
	}
	safety, err := decodeSafety(c.SafetySettings)
	if err != nil {
		return genbridge.ModelConfig{}, err
	}
	cfg.SafetySettings = safety
	return cfg, nil
}

// decodeSafety reads a category→level object keeping document key order.
func decodeSafety(raw json.RawMessage) ([]genbridge.SafetySetting, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, invalid("safetySettings", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: safetySettings must be an object", ErrInvalidArgument)
	}
	var out []genbridge.SafetySetting
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, invalid("safetySettings", err)
		}
		var level string
		if err := dec.Decode(&level); err != nil {
			return nil, invalid("safetySettings."+keyTok.(string), err)
		}
		out = append(out, genbridge.SafetySetting{
			Category: genbridge.HarmCategory(keyTok.(string)),
			Level:    genbridge.BlockLevel(level),
		})
	}
	return out, nil
}

// decodeImages accepts "" and "null" as no images.
func decodeImages(s string) ([]genbridge.ImageBlob, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var in []imageJSON
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, invalid("images", err)
	}
	return toImageBlobs(in), nil
}

func toImageBlobs(in []imageJSON) []genbridge.ImageBlob {
	if len(in) == 0 {
		return nil
	}
	out := make([]genbridge.ImageBlob, len(in))
	for i, img := range in {
		out[i] = genbridge.ImageBlob{MIMEType: img.MIMEType, Data: img.Data}
	}
	return out
}

func decodeHistory(s string) ([]genbridge.ChatHistoryItem, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var in []historyItemJSON
	if err := json.Unmarshal([]byte(s), &in); err != nil {
		return nil, invalid("history", err)
	}
	out := make([]genbridge.ChatHistoryItem, len(in))
	for i, item := range in {
		out[i] = genbridge.ChatHistoryItem{IsUser: item.IsUser, Text: item.Text, Images: toImageBlobs(item.Images)}
	}
	return out, nil
}

func encodeTurns(turns []genbridge.ChatTurn) (string, error) {
	out := make([]turnJSON, len(turns))
	for i, t := range turns {
		parts := make([]partJSON, len(t.Parts))
		for j, p := range t.Parts {
			parts[j] = partJSON{Type: p.Type, Content: p.Content}
		}
		out[i] = turnJSON{IsUser: t.IsUser, Parts: parts}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
