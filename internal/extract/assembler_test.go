package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobase/jobsheet-tracker/constants"
)

const sampleSheet = "Customer: John Jerrime\n" +
	"Phone: 0411 056 876\n" +
	"Bike: Trek Marlin 7\n" +
	"Work Required: Fork service\n" +
	"Work Done: Fork Service\n" +
	"Hub clean\n" +
	"Labor: $80\n" +
	"Parts: $210\n" +
	"Notes: S/T 27/6/2023"

func newAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(nil, nil)
	require.NoError(t, err)
	return a
}

func TestExtractSampleSheet(t *testing.T) {
	res := newAssembler(t).Extract(sampleSheet)

	assert.Equal(t, "John Jerrime", res.Draft.CustomerName)
	assert.Equal(t, "0411 056 876", res.Draft.CustomerPhone)
	assert.Equal(t, "Trek Marlin 7", res.Draft.BikeModel)
	assert.Equal(t, "Fork service", res.Draft.WorkRequired)
	assert.Equal(t, "Fork Service\nHub clean", res.Draft.WorkDone)
	assert.Equal(t, 80.0, res.Draft.LaborCost)
	assert.Equal(t, 210.0, res.Draft.PartsCost)
	assert.Equal(t, 290.0, res.Draft.TotalCost)
	assert.Equal(t, "S/T 27/6/2023", res.Draft.Notes)
	assert.Equal(t, constants.DraftStatusComplete, res.Status)
	assert.True(t, res.Complete())
	assert.Empty(t, res.Missing)
}

func TestExtractMissingCustomerIsIncomplete(t *testing.T) {
	raw := "Bike: Giant Talon\nPhone: 0400 000 000\nLabor: 50"
	res := newAssembler(t).Extract(raw)

	assert.Equal(t, "Unknown customer", res.Draft.CustomerName)
	assert.Equal(t, constants.DraftStatusIncomplete, res.Status)
	assert.False(t, res.Complete())
	assert.Equal(t, []string{FieldCustomerName}, res.Missing)
}

func TestExtractUnparsableCostNormalizesToZero(t *testing.T) {
	raw := "Customer: Ann\nPhone: 123\nBike: BMX\nLabor: free\nParts: $15"
	res := newAssembler(t).Extract(raw)

	assert.Equal(t, 0.0, res.Draft.LaborCost)
	assert.Equal(t, 15.0, res.Draft.PartsCost)
	assert.Equal(t, 15.0, res.Draft.TotalCost)
	assert.True(t, res.Complete())
}

func TestExtractTotalIsAlwaysDerived(t *testing.T) {
	// A printed total must be ignored; only labor+parts counts.
	raw := "Customer: Bob\nPhone: 1\nBike: MTB\nLabor: 40\nParts: 10\nTotal: 999"
	res := newAssembler(t).Extract(raw)

	assert.Equal(t, 50.0, res.Draft.TotalCost)
}

func TestExtractEmptyInputDefaultsEverything(t *testing.T) {
	res := newAssembler(t).Extract("")

	assert.Equal(t, "Unknown customer", res.Draft.CustomerName)
	assert.Equal(t, "Unknown phone", res.Draft.CustomerPhone)
	assert.Equal(t, "Unknown bike", res.Draft.BikeModel)
	assert.Zero(t, res.Draft.LaborCost)
	assert.Zero(t, res.Draft.PartsCost)
	assert.Zero(t, res.Draft.TotalCost)
	assert.Equal(t, constants.DraftStatusIncomplete, res.Status)
	assert.Len(t, res.Missing, 3)
}

func TestExtractIsDeterministic(t *testing.T) {
	a := newAssembler(t)
	first := a.Extract(sampleSheet)
	second := a.Extract(sampleSheet)
	assert.Equal(t, first, second)
}

func TestExtractEmptySectionIsNotDefault(t *testing.T) {
	raw := "Customer: Ann\nPhone: 1\nBike: BMX\nWork Done:\nNotes: rear rack"
	res := newAssembler(t).Extract(raw)

	// Header present with no trailing content: empty value, still a match.
	assert.Empty(t, res.Draft.WorkDone)
	assert.True(t, res.Matched[FieldWorkDone])
	// Header entirely absent: default substitution, not a match.
	assert.False(t, res.Matched[FieldWorkRequired])
	assert.Equal(t, "rear rack", res.Draft.Notes)
}

func TestExtractCaseInsensitiveHeaders(t *testing.T) {
	raw := "CUSTOMER: Ann\nphone: 0411\nBIKE: Cannondale"
	res := newAssembler(t).Extract(raw)

	assert.Equal(t, "Ann", res.Draft.CustomerName)
	assert.Equal(t, "0411", res.Draft.CustomerPhone)
	assert.Equal(t, "Cannondale", res.Draft.BikeModel)
	assert.True(t, res.Complete())
}

func TestNewAssemblerRejectsBadSpecs(t *testing.T) {
	_, err := NewAssembler([]FieldSpec{{Name: "x"}}, nil)
	require.Error(t, err)

	_, err = NewAssembler([]FieldSpec{{Labels: []string{"a"}}}, nil)
	require.Error(t, err)
}
