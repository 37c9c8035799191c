package refactor

import (
	"testing"

	"github.com/huangsam/entran/schema"
	"github.com/stretchr/testify/assert"
)

func TestCountTypes(t *testing.T) {
	counts := CountTypes([]byte(rminerReport))
	assert.Equal(t, []schema.TypeCount{
		{Type: "Extract Method", Occurrences: 3},
		{Type: "Rename Variable", Occurrences: 1},
		{Type: "Move Class", Occurrences: 1},
	}, counts)
}

func TestCountTypes_WhitespaceAndNonStrings(t *testing.T) {
	doc := `{"type":"A", "x": {"type" :  "B"}, "type": 3, "codeElementType": "C", "y": "\"type\": \"A\""}`
	counts := CountTypes([]byte(doc))
	// The pattern runs over raw text; the escaped occurrence has a backslash before its closing quote.
	assert.Equal(t, []schema.TypeCount{
		{Type: "A", Occurrences: 1},
		{Type: "B", Occurrences: 1},
	}, counts)
}

func TestCountTypes_Empty(t *testing.T) {
	assert.Empty(t, CountTypes(nil))
	assert.Empty(t, CountTypes([]byte(`{"commits": []}`)))
}
