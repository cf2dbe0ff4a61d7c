// Package manifest parses YAML model profiles into genbridge.ModelConfig.
// A profile carries everything but the API key, which the caller supplies at InitModel time.
package manifest

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/skosovsky/genbridge"
	"github.com/skosovsky/genbridge/internal/cast"

	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fileManifest is the YAML profile shape.
// safety stays a node so that the category order written in the file is kept.
type fileManifest struct {
	ID          string         `yaml:"id" validate:"required"`
	Description string         `yaml:"description"`
	Model       string         `yaml:"model" validate:"required"`
	Generation  map[string]any `yaml:"generation" validate:"-"`
	Safety      yaml.Node      `yaml:"safety" validate:"-"`
}

type generationParams struct {
	Temperature     *float64 `validate:"omitempty,gte=0,lte=2"`
	TopK            *float64 `validate:"omitempty,gt=0"`
	TopP            *float64 `validate:"omitempty,gte=0,lte=1"`
	MaxOutputTokens *int64   `validate:"omitempty,gt=0"`
	StopSequences   []string `validate:"omitempty,max=5,dive,required"`
}

// ParseBytes parses a YAML profile. The returned config has an empty APIKey.
func ParseBytes(data []byte) (*genbridge.ModelConfig, error) {
	var m fileManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", genbridge.ErrInvalidManifest, err)
	}
	return buildConfig(&m)
}

// ParseFile reads and parses a profile file.
func ParseFile(path string) (*genbridge.ModelConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is validated by caller
	if err != nil {
		return nil, fmt.Errorf("manifest: read file: %w", err)
	}
	return ParseBytes(data)
}

// ParseFS reads and parses a profile from fs.FS (e.g. embed.FS).
func ParseFS(fsys fs.FS, name string) (*genbridge.ModelConfig, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("manifest: read fs: %w", err)
	}
	return ParseBytes(data)
}

func buildConfig(m *fileManifest) (*genbridge.ModelConfig, error) {
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %w", genbridge.ErrInvalidManifest, err)
	}
	gen, err := extractGeneration(m.Generation)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(gen); err != nil {
		return nil, fmt.Errorf("%w: generation: %w", genbridge.ErrInvalidManifest, err)
	}
	safety, err := safetySettings(&m.Safety)
	if err != nil {
		return nil, err
	}
	return &genbridge.ModelConfig{
		ModelName:       m.Model,
		Temperature:     gen.Temperature,
		TopK:            gen.TopK,
		TopP:            gen.TopP,
		MaxOutputTokens: gen.MaxOutputTokens,
		StopSequences:   gen.StopSequences,
		SafetySettings:  safety,
	}, nil
}

// extractGeneration reads the well-known generation keys; unknown keys are ignored.
func extractGeneration(g map[string]any) (*generationParams, error) {
	out := &generationParams{}
	floats := []struct {
		key string
		dst **float64
	}{
		{"temperature", &out.Temperature},
		{"top_k", &out.TopK},
		{"top_p", &out.TopP},
	}
	for _, f := range floats {
		v, ok := g[f.key]
		if !ok {
			continue
		}
		x, ok := cast.ToFloat64(v)
		if !ok {
			return nil, fmt.Errorf("%w: generation.%s must be a number, got %T", genbridge.ErrInvalidManifest, f.key, v)
		}
		*f.dst = &x
	}
	if v, ok := g["max_output_tokens"]; ok {
		n, ok := cast.ToInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: generation.max_output_tokens must be an integer, got %T", genbridge.ErrInvalidManifest, v)
		}
		out.MaxOutputTokens = &n
	}
	if v, ok := g["stop_sequences"]; ok {
		ss, ok := cast.ToStringSlice(v)
		if !ok {
			return nil, fmt.Errorf("%w: generation.stop_sequences must be a list of strings", genbridge.ErrInvalidManifest)
		}
		out.StopSequences = ss
	}
	return out, nil
}

// safetySettings reads the safety mapping in document order.
func safetySettings(n *yaml.Node) ([]genbridge.SafetySetting, error) {
	if n.Kind == 0 || n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: safety must be a mapping of category to block level", genbridge.ErrInvalidManifest)
	}
	out := make([]genbridge.SafetySetting, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var category, level string
		if err := n.Content[i].Decode(&category); err != nil {
			return nil, fmt.Errorf("%w: safety key: %w", genbridge.ErrInvalidManifest, err)
		}
		if err := n.Content[i+1].Decode(&level); err != nil {
			return nil, fmt.Errorf("%w: safety.%s: %w", genbridge.ErrInvalidManifest, category, err)
		}
		out = append(out, genbridge.SafetySetting{
			Category: genbridge.HarmCategory(category),
			Level:    genbridge.BlockLevel(level),
		})
	}
	return out, nil
}
