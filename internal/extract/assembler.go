package extract

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/velobase/jobsheet-tracker/constants"
)

// JobDraft is the output record of one extraction pass. Every field is always
// present — unrecovered fields carry their spec's default — and TotalCost is
// always derived from LaborCost + PartsCost, never read from text.
type JobDraft struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	BikeModel     string  `json:"bike_model"`
	WorkRequired  string  `json:"work_required"`
	WorkDone      string  `json:"work_done"`
	LaborCost     float64 `json:"labor_cost"`
	PartsCost     float64 `json:"parts_cost"`
	TotalCost     float64 `json:"total_cost"`
	Notes         string  `json:"notes"`
}

// Result carries the assembled draft plus the completeness signal. Status is
// COMPLETE only when every required field was recovered by a pattern match
// rather than default substitution; the draft itself never distinguishes the
// two, so callers needing that distinction read Matched/Missing here.
type Result struct {
	Draft   JobDraft
	Status  constants.DraftStatus
	Matched map[string]bool
	Missing []string
}

// Complete reports whether all required fields were recovered from text.
func (r Result) Complete() bool {
	return r.Status == constants.DraftStatusComplete
}

// Assembler runs every field spec against one OCR pass's raw text. It is a
// pure transformation: no I/O, no state across calls, safe for concurrent use
// on independent inputs.
type Assembler struct {
	fields []compiledField
	logger *slog.Logger
}

// NewAssembler compiles the given field specs; nil or empty specs fall back
// to DefaultSpecs.
func NewAssembler(specs []FieldSpec, logger *slog.Logger) (*Assembler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(specs) == 0 {
		specs = DefaultSpecs()
	}
	fields := make([]compiledField, 0, len(specs))
	for _, s := range specs {
		cf, err := compileField(s)
		if err != nil {
			return nil, fmt.Errorf("compile field spec: %w", err)
		}
		fields = append(fields, cf)
	}
	return &Assembler{fields: fields, logger: logger}, nil
}

// stopsFor returns the union of every other field's header patterns, used as
// the stop boundary when resolving one section.
func (a *Assembler) stopsFor(i int) []*regexp.Regexp {
	stops := make([]*regexp.Regexp, 0, len(a.fields)*2)
	for j, f := range a.fields {
		if j == i {
			continue
		}
		stops = append(stops, f.headers...)
	}
	return stops
}

// Extract resolves every field spec against raw, normalizes cost fields,
// derives the total, and reports completeness. Extraction never fails on
// partial information: field-level misses are silently defaulted and only
// the required-field misses surface, as the INCOMPLETE status.
func (a *Assembler) Extract(raw string) Result {
	res := Result{
		Status:  constants.DraftStatusPending,
		Matched: make(map[string]bool, len(a.fields)),
	}
	for i, f := range a.fields {
		var value string
		var matched bool
		if f.spec.Section {
			value, matched = f.matchSection(raw, a.stopsFor(i))
		} else {
			value, matched = f.matchLine(raw)
		}
		if !matched {
			value = f.spec.Default
			if f.spec.Required {
				res.Missing = append(res.Missing, f.spec.Name)
			}
		}
		res.Matched[f.spec.Name] = matched
		a.apply(&res.Draft, f.spec.Name, value)
	}
	res.Draft.TotalCost = res.Draft.LaborCost + res.Draft.PartsCost
	res.Status = constants.DraftStatusExtracted
	if len(res.Missing) == 0 {
		res.Status = constants.DraftStatusComplete
	} else {
		res.Status = constants.DraftStatusIncomplete
	}
	return res
}

func (a *Assembler) apply(d *JobDraft, name, value string) {
	switch name {
	case FieldCustomerName:
		d.CustomerName = value
	case FieldCustomerPhone:
		d.CustomerPhone = value
	case FieldBikeModel:
		d.BikeModel = value
	case FieldWorkRequired:
		d.WorkRequired = value
	case FieldWorkDone:
		d.WorkDone = value
	case FieldLaborCost:
		d.LaborCost = ParseMoney(value)
	case FieldPartsCost:
		d.PartsCost = ParseMoney(value)
	case FieldNotes:
		d.Notes = value
	default:
		a.logger.Debug("field spec has no draft slot", "field", name)
	}
}
