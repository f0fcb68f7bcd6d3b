package extract

import (
	"regexp"
	"strings"
)

// sectionStart locates the field's header, trying labels in priority order,
// and returns the offset just past the header match.
func (f compiledField) sectionStart(text string) (int, bool) {
	for _, re := range f.headers {
		if loc := re.FindStringIndex(text); loc != nil {
			return loc[1], true
		}
	}
	return 0, false
}

// matchSection captures everything after the field's header up to — but not
// including — the nearest following occurrence of any other registered header,
// or end of text if no further header exists. Scanning for the boundary
// explicitly keeps one multi-line section from swallowing the next.
//
// A header with no trailing content before the next header yields an empty
// string with ok=true: emptiness is a valid outcome distinct from "label
// absent".
func (f compiledField) matchSection(text string, stops []*regexp.Regexp) (string, bool) {
	start, ok := f.sectionStart(text)
	if !ok {
		return "", false
	}
	rest := text[start:]
	end := len(rest)
	for _, re := range stops {
		if loc := re.FindStringIndex(rest); loc != nil && loc[0] < end {
			end = loc[0]
		}
	}
	return strings.TrimSpace(rest[:end]), true
}
