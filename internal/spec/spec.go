// Package spec post-processes generated or uploaded OpenAPI documents.
package spec

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	fenceOpener = regexp.MustCompile("^```[A-Za-z0-9_+.\\-]*[ \\t]*(\\r?\\n|$)")
	fenceCloser = regexp.MustCompile("```\\s*$")
	// openapi: followed by a version token, optionally quoted.
	versionMarker = regexp.MustCompile(`(?i)openapi:[ \t]*["']?\d`)
)

// Clean strips markdown fences and discards any preamble before the
// openapi version marker. Text without a marker is returned as is.
// Clean(Clean(s)) == Clean(s) for every s.
func Clean(raw string) string {
	s := raw
	for {
		prev := s
		s = strings.TrimSpace(s)
		s = fenceOpener.ReplaceAllString(s, "")
		s = fenceCloser.ReplaceAllString(s, "")
		if s == prev {
			break
		}
	}

	if strings.HasPrefix(s, "openapi:") {
		return s
	}
	if loc := versionMarker.FindStringIndex(s); loc != nil {
		return s[loc[0]:]
	}
	return s
}

// ValidationWarning explains why a document may not be a usable spec.
// It never blocks submission.
type ValidationWarning struct {
	Reason string `json:"reason"`
}

func (w *ValidationWarning) String() string {
	return w.Reason
}

// Validate returns nil for a document that starts with openapi: or swagger:
// and parses as a YAML mapping with an info or paths section.
func Validate(text string) *ValidationWarning {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &ValidationWarning{Reason: "specification is empty"}
	}
	if !strings.HasPrefix(trimmed, "openapi:") && !strings.HasPrefix(trimmed, "swagger:") {
		return &ValidationWarning{Reason: "specification does not start with openapi: or swagger:"}
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(trimmed), &doc); err != nil {
		return &ValidationWarning{Reason: fmt.Sprintf("specification is not valid YAML: %v", err)}
	}
	_, hasInfo := doc["info"]
	_, hasPaths := doc["paths"]
	if !hasInfo && !hasPaths {
		return &ValidationWarning{Reason: "specification has neither an info nor a paths section"}
	}
	return nil
}

// Title returns info.title, or "" when the text is not YAML or has none.
func Title(text string) string {
	var doc struct {
		Info struct {
			Title string `yaml:"title"`
		} `yaml:"info"`
	}
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Info.Title)
}
