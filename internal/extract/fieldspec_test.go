package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, spec FieldSpec) compiledField {
	t.Helper()
	cf, err := compileField(spec)
	require.NoError(t, err)
	return cf
}

func TestMatchLineFirstSuccessWins(t *testing.T) {
	cf := compile(t, FieldSpec{
		Name:   FieldCustomerName,
		Labels: []string{"customer name", "customer", "name"},
	})

	// Both labels present: the more specific one is tried first.
	v, ok := cf.matchLine("Name: Second\nCustomer Name: First")
	require.True(t, ok)
	assert.Equal(t, "First", v)
}

func TestMatchLineEmptyCaptureFallsThrough(t *testing.T) {
	cf := compile(t, FieldSpec{
		Name:   FieldCustomerName,
		Labels: []string{"customer", "client"},
	})

	// "Customer:" with no content must not win as an empty success.
	v, ok := cf.matchLine("Customer:\nClient: Bob")
	require.True(t, ok)
	assert.Equal(t, "Bob", v)
}

func TestMatchLineNoMatch(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldBikeModel, Labels: []string{"bike"}})

	_, ok := cf.matchLine("nothing relevant here")
	assert.False(t, ok)

	// Label with no following content at all is a miss, not an empty success.
	_, ok = cf.matchLine("Bike:")
	assert.False(t, ok)
}

func TestMatchLineTrimsWhitespace(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldBikeModel, Labels: []string{"bike"}})

	v, ok := cf.matchLine("Bike:   Trek Marlin 7   ")
	require.True(t, ok)
	assert.Equal(t, "Trek Marlin 7", v)
}

func TestMatchLineTolerantOfLabelSpacing(t *testing.T) {
	cf := compile(t, FieldSpec{Name: FieldWorkRequired, Labels: []string{"work required"}})

	v, ok := cf.matchLine("Work  Required: true-up rear wheel")
	require.True(t, ok)
	assert.Equal(t, "true-up rear wheel", v)
}

func TestCompileFieldErrors(t *testing.T) {
	_, err := compileField(FieldSpec{Name: "", Labels: []string{"a"}})
	assert.Error(t, err)

	_, err = compileField(FieldSpec{Name: "a"})
	assert.Error(t, err)

	_, err = compileField(FieldSpec{Name: "a", Labels: []string{"   "}})
	assert.Error(t, err)
}
