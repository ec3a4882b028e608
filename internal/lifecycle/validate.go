package lifecycle

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"hackathon-bot/internal/sheets"
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldMoreInfo    = "more_info"
)

// ValidationError maps field names to the reason they were rejected.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "invalid " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// ValidateMoreInfo accepts blank text, the unset sentinel, or anything
// starting with http:// or https://. Only the prefix is checked.
func ValidateMoreInfo(text string) error {
	if msg := moreInfoProblem(text); msg != "" {
		return &ValidationError{Fields: map[string]string{FieldMoreInfo: msg}}
	}
	return nil
}

func moreInfoProblem(text string) string {
	if text == "" || text == sheets.Unset || strings.TrimSpace(text) == "" {
		return ""
	}
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return ""
	}
	return "more info must be a URL"
}

// ProjectInput is the editable part of a project.
type ProjectInput struct {
	Title        string
	Description  string
	ProjectType  string
	Contestant   bool
	Locked       bool
	Technologies []string
	MoreInfo     string
	Judges       []string
}

// ValidateProject reports every field that fails, not just the first.
func ValidateProject(in ProjectInput) error {
	var verr ValidationError
	if strings.TrimSpace(in.Title) == "" {
		verr.add(FieldTitle, "title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		verr.add(FieldDescription, "description is required")
	}
	if msg := moreInfoProblem(in.MoreInfo); msg != "" {
		verr.add(FieldMoreInfo, msg)
	}
	if len(verr.Fields) > 0 {
		return &verr
	}
	return nil
}
