package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerRes(t *testing.T, labels ...string) []*regexp.Regexp {
	t.Helper()
	var out []*regexp.Regexp
	for i, l := range labels {
		cf := compile(t, FieldSpec{Name: "stop", Labels: []string{l}})
		require.Len(t, cf.headers, 1, "label %d", i)
		out = append(out, cf.headers[0])
	}
	return out
}

func TestMatchSectionStopsAtNextHeader(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldWorkDone, Labels: []string{"work done"}, Section: true})
	stops := headerRes(t, "notes", "labor")

	v, ok := cf.matchSection("Work Done: chain swap\ncable ends\nNotes: pickup Friday", stops)
	require.True(t, ok)
	assert.Equal(t, "chain swap\ncable ends", v)
}

func TestMatchSectionRunsToEndOfText(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldNotes, Labels: []string{"notes"}, Section: true})

	v, ok := cf.matchSection("Notes: left pedal creaks\nunder load", nil)
	require.True(t, ok)
	assert.Equal(t, "left pedal creaks\nunder load", v)
}

func TestMatchSectionEmptyBody(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldWorkDone, Labels: []string{"work done"}, Section: true})
	stops := headerRes(t, "notes")

	v, ok := cf.matchSection("Work Done:\nNotes: n/a", stops)
	require.True(t, ok)
	assert.Empty(t, v)
}

func TestMatchSectionHeaderAbsent(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldWorkDone, Labels: []string{"work done"}, Section: true})

	_, ok := cf.matchSection("Customer: Ann", nil)
	assert.False(t, ok)
}

func TestMatchSectionScalarLabelIsABoundary(t *testing.T) {
	// A following single-line field stops the capture just like another section.
	cf := compile(t, FieldSpec{Name: FieldWorkDone, Labels: []string{"work done"}, Section: true})
	stops := headerRes(t, "labor")

	v, ok := cf.matchSection("Work Done: fork service\nhub clean\nLabor: $80", stops)
	require.True(t, ok)
	assert.Equal(t, "fork service\nhub clean", v)
}

func TestMatchSectionLabelPriorityOrder(t *testing.T) {
	cf := compile(t, FieldSpec{
		Name:    FieldWorkRequired,
		Labels:  []string{"work required", "work requested"},
		Section: true,
	})

	v, ok := cf.matchSection("Work Requested: tune-up", nil)
	require.True(t, ok)
	assert.Equal(t, "tune-up", v)
}
