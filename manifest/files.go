package manifest

import (
	"path"
	"strings"
)

// Extensions are the profile file extensions, in lookup order.
var Extensions = []string{".yaml", ".yml"}

// CandidateFiles returns the file names that may hold the profile for name and env, most specific
// first: name.env.yaml, name.env.yml, name.yaml, name.yml. name and env must already be validated.
func CandidateFiles(name, env string) []string {
	bases := []string{name}
	if env != "" {
		bases = []string{name + "." + env, name}
	}
	out := make([]string, 0, len(bases)*len(Extensions))
	for _, base := range bases {
		for _, ext := range Extensions {
			out = append(out, base+ext)
		}
	}
	return out
}

// SplitFileName maps a profile file back to its name and env: "assistant.prod.yaml" is
// ("assistant", "prod"). ok is false when file does not carry a profile extension.
func SplitFileName(file string) (name, env string, ok bool) {
	base := path.Base(file)
	for _, ext := range Extensions {
		if stem, found := strings.CutSuffix(base, ext); found && stem != "" {
			if i := strings.LastIndex(stem, "."); i >= 0 {
				return stem[:i], stem[i+1:], true
			}
			return stem, "", true
		}
	}
	return "", "", false
}
