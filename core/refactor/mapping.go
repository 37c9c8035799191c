package refactor

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/entran/internal/contract"
	"github.com/xeipuuv/gojsonschema"
)

// reportShape is the minimal structure TypesByCommit relies on.
const reportShape = `{
  "type": "object",
  "properties": {
    "commits": {"type": "array"}
  },
  "required": ["commits"]
}`

var reportSchema = gojsonschema.NewStringLoader(reportShape)

// ValidateShape checks that data is an object with a "commits" array.
func ValidateShape(data []byte) error {
	result, err := gojsonschema.Validate(reportSchema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", contract.ErrMalformedReport, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", contract.ErrMalformedReport, strings.Join(msgs, "; "))
	}
	return nil
}

type commitEntry struct {
	SHA1         json.RawMessage   `json:"sha1"`
	Refactorings []json.RawMessage `json:"refactorings"`
}

type refactoringEntry struct {
	Type json.RawMessage `json:"type"`
}

// rawString returns the value of a JSON string, or "" for anything else.
func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// TypesByCommit reads the structured form of the report and lists the
// refactoring types of each commit in report order. Entries without a sha1
// extend the previous commit's list. Entries that are not objects are skipped.
func TypesByCommit(r io.Reader) (map[string][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := ValidateShape(data); err != nil {
		return nil, err
	}

	var doc struct {
		Commits []json.RawMessage `json:"commits"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrMalformedReport, err)
	}

	out := make(map[string][]string)
	var current string
	var types []string
	for _, raw := range doc.Commits {
		var entry commitEntry
		if json.Unmarshal(raw, &entry) != nil {
			continue
		}
		if sha1 := rawString(entry.SHA1); sha1 != "" {
			if current != "" {
				out[current] = types
			}
			current = sha1
			types = []string{}
		}
		for _, rr := range entry.Refactorings {
			var ref refactoringEntry
			if json.Unmarshal(rr, &ref) != nil {
				continue
			}
			if t := rawString(ref.Type); t != "" {
				types = append(types, t)
			}
		}
	}
	if current != "" {
		out[current] = types
	}
	return out, nil
}

// MappingTable lays out one column per commit, headed by the commit hash,
// with its refactoring types below. Shorter columns are padded with "".
func MappingTable(commits []string, types map[string][]string) [][]string {
	if len(commits) == 0 {
		return nil
	}
	depth := 0
	for _, c := range commits {
		depth = max(depth, len(types[c]))
	}
	table := make([][]string, 0, depth+1)
	table = append(table, append([]string(nil), commits...))
	for i := range depth {
		row := make([]string, len(commits))
		for j, c := range commits {
			if i < len(types[c]) {
				row[j] = types[c][i]
			}
		}
		table = append(table, row)
	}
	return table
}
