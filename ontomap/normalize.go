package ontomap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var labelSeparators = strings.NewReplacer("_", " ", "-", " ")

// NormalizeLabel prepares a label for embedding: trim, lowercase, and
// underscores and hyphens turned into spaces. Compatibility forms such as
// full-width letters are left for the tokenizer.
func NormalizeLabel(label string) string {
	s := strings.TrimSpace(label)
	s = cases.Lower(language.Und).String(s)
	return labelSeparators.Replace(s)
}

// NormalizeAll normalizes every label, keeping positions.
func NormalizeAll(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = NormalizeLabel(l)
	}
	return out
}
