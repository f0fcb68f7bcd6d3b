package extract

// DefaultSpecs returns the header vocabulary the extractor ships with.
// Handwritten sheets label the same concept differently from template to
// template, so every field carries its known synonyms, most specific first.
// Cost fields default to the empty string, which ParseMoney normalizes to 0.
func DefaultSpecs() []FieldSpec {
	return []FieldSpec{
		{
			Name:     FieldCustomerName,
			Labels:   []string{"customer name", "customer", "client", "name"},
			Required: true,
			Default:  "Unknown customer",
		},
		{
			Name:     FieldCustomerPhone,
			Labels:   []string{"phone number", "phone", "mobile", "contact", "ph"},
			Required: true,
			Default:  "Unknown phone",
		},
		{
			Name:     FieldBikeModel,
			Labels:   []string{"bike model", "bike", "bicycle", "model"},
			Required: true,
			Default:  "Unknown bike",
		},
		{
			Name:    FieldWorkRequired,
			Labels:  []string{"work required", "work requested", "work needed"},
			Section: true,
		},
		{
			Name:    FieldWorkDone,
			Labels:  []string{"work done", "work performed", "work completed"},
			Section: true,
		},
		{
			Name:   FieldLaborCost,
			Labels: []string{"labor cost", "labour cost", "labor", "labour"},
		},
		{
			Name:   FieldPartsCost,
			Labels: []string{"parts cost", "parts"},
		},
		{
			Name:    FieldNotes,
			Labels:  []string{"notes", "note", "comments"},
			Section: true,
		},
	}
}
