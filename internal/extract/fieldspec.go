package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Field names understood by the draft assembler.
const (
	FieldCustomerName  = "customer_name"
	FieldCustomerPhone = "customer_phone"
	FieldBikeModel     = "bike_model"
	FieldWorkRequired  = "work_required"
	FieldWorkDone      = "work_done"
	FieldLaborCost     = "labor_cost"
	FieldPartsCost     = "parts_cost"
	FieldNotes         = "notes"
)

// FieldSpec binds a logical field to its ordered recognition labels and the
// default substituted when every pattern fails.
//
// Order matters: labels are tried most-specific-first and the first successful
// capture wins; later labels are never evaluated. Handwritten job sheets
// follow no single template, so a field is recognized under any of its label
// synonyms ("Customer", "Name", "Client", ...). Supporting a new template
// means appending a label, not rewriting logic.
type FieldSpec struct {
	Name     string
	Labels   []string
	Section  bool // multi-line capture bounded by the other fields' labels
	Required bool // counts toward the completeness signal
	Default  string
}

// compiledField holds the pattern chain derived from one FieldSpec.
type compiledField struct {
	spec    FieldSpec
	lines   []*regexp.Regexp // label + separator + same-line capture
	headers []*regexp.Regexp // label as a section header; separator optional
}

// labelToken turns "work required" into a pattern fragment tolerant of the
// variable whitespace OCR produces inside multi-word labels.
func labelToken(label string) string {
	words := strings.Fields(strings.TrimSpace(label))
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, `[ \t]+`)
}

func compileField(spec FieldSpec) (compiledField, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return compiledField{}, fmt.Errorf("field spec without a name")
	}
	if len(spec.Labels) == 0 {
		return compiledField{}, fmt.Errorf("field %q has no labels", spec.Name)
	}
	cf := compiledField{spec: spec}
	for _, label := range spec.Labels {
		tok := labelToken(label)
		if tok == "" {
			return compiledField{}, fmt.Errorf("field %q has an empty label", spec.Name)
		}
		line, err := regexp.Compile(`(?im)^[ \t]*` + tok + `[ \t]*[:\-][ \t]*(.*)$`)
		if err != nil {
			return compiledField{}, fmt.Errorf("field %q label %q: %w", spec.Name, label, err)
		}
		header, err := regexp.Compile(`(?im)^[ \t]*` + tok + `[ \t]*(?:[:\-][ \t]*|$)`)
		if err != nil {
			return compiledField{}, fmt.Errorf("field %q label %q: %w", spec.Name, label, err)
		}
		cf.lines = append(cf.lines, line)
		cf.headers = append(cf.headers, header)
	}
	return cf, nil
}

// matchLine runs the pattern chain for a single-line field. A label with no
// following content is a non-match, so later patterns still get a shot.
func (f compiledField) matchLine(text string) (string, bool) {
	for _, re := range f.lines {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}
