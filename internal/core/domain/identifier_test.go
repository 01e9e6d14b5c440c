package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidIdentifierInput(t *testing.T) {
	type TestCase struct {
		description string
		raw         string
		want        bool
	}

	testCases := []TestCase{
		{description: "single identifier", raw: "7719286104", want: true},
		{description: "comma and space separated", raw: "123, 456", want: true},
		{description: "only spaces", raw: "123 456  789", want: true},
		{description: "tabs and newlines", raw: "123\n456\t789", want: true},
		{description: "letter inside", raw: "12a", want: false},
		{description: "semicolon", raw: "123;456", want: false},
		{description: "dash", raw: "123-456", want: false},
		{description: "only separators", raw: ",,, ", want: false},
		{description: "empty", raw: "", want: false},
		{description: "non-ascii digit", raw: "١٢٣", want: false},
		{description: "control character", raw: "123\x00", want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.want, IsValidIdentifierInput(testCase.raw))
		})
	}
}

func TestBuildIdentifierBatch(t *testing.T) {
	type TestCase struct {
		description string
		raw         string
		want        []string
	}

	testCases := []TestCase{
		{description: "duplicates collapse", raw: "123, 123 456", want: []string{"123", "456"}},
		{description: "empty tokens dropped", raw: ",,123,, ,456,", want: []string{"123", "456"}},
		{description: "leading zero is distinct", raw: "123 0123", want: []string{"123", "0123"}},
		{description: "single", raw: "7719286104", want: []string{"7719286104"}},
		{description: "nothing", raw: " , ", want: []string{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			batch := BuildIdentifierBatch(testCase.raw)

			assert.Equal(t, len(testCase.want), batch.Len())
			assert.ElementsMatch(t, testCase.want, batch.IDs())
		})
	}
}

func TestParseIdentifiers(t *testing.T) {
	batch, err := ParseIdentifiers("7719286104, 7720675962")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"7719286104", "7720675962"}, batch.IDs())

	_, err = ParseIdentifiers("abc")
	require.ErrorIs(t, err, ErrInvalidIdentifiers)
}

func TestIdentifierBatch_IDsIsCopy(t *testing.T) {
	batch := BuildIdentifierBatch("1 2 1")
	ids := batch.IDs()
	ids[0] = "changed"

	assert.Equal(t, 2, batch.Len())
	assert.Equal(t, []string{"1", "2"}, batch.IDs())
}
