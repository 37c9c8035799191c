package refactor

import (
	"strings"
	"testing"

	"github.com/huangsam/entran/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesByCommit(t *testing.T) {
	types, err := TypesByCommit(strings.NewReader(rminerReport))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"aaaaaaaa11111111": {"Extract Method", "Rename Variable"},
		"bbbbbbbb22222222": {},
		"cccccccc33333333": {"Extract Method", "Move Class", "Extract Method"},
	}, types)
}

func TestTypesByCommit_EntryWithoutSHA1ExtendsPrevious(t *testing.T) {
	doc := `{"commits": [
		{"sha1": "one", "refactorings": [{"type": "A"}]},
		{"refactorings": [{"type": "B"}, {"description": "no type"}, "not an object"]},
		42,
		{"sha1": "two", "refactorings": [{"type": "C"}]}
	]}`
	types, err := TypesByCommit(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"one": {"A", "B"},
		"two": {"C"},
	}, types)
}

func TestTypesByCommit_EmptyCommits(t *testing.T) {
	types, err := TypesByCommit(strings.NewReader(`{"commits": []}`))
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestTypesByCommit_WrongShape(t *testing.T) {
	for _, doc := range []string{`[]`, `{"other": true}`, `{}`, `{"commits": {}}`, `{"commits": "x"}`, `not json`} {
		_, err := TypesByCommit(strings.NewReader(doc))
		assert.ErrorIs(t, err, contract.ErrMalformedReport, doc)
	}
}

func TestMappingTable(t *testing.T) {
	table := MappingTable([]string{"c1", "c2", "c3"}, map[string][]string{
		"c1": {"A", "B"},
		"c3": {"C"},
	})
	assert.Equal(t, [][]string{
		{"c1", "c2", "c3"},
		{"A", "", "C"},
		{"B", "", ""},
	}, table)

	assert.Nil(t, MappingTable(nil, nil))
	assert.Equal(t, [][]string{{"c1"}}, MappingTable([]string{"c1"}, nil))
}
