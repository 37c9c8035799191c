// Package refactor reads refactoring detection reports.
package refactor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/entran/internal/contract"
)

// Keys that drive the per-commit count.
const (
	commitKey = "sha1"
	typeKey   = "type"
)

// tally attributes "type" keys to the most recent commit cursor.
type tally struct {
	counts    map[string]int
	cursor    string
	hasCursor bool
	n         int
}

// flush stores the running count for the current cursor. A cursor seen
// before keeps only its latest count.
func (t *tally) flush() {
	if t.hasCursor {
		t.counts[t.cursor] = t.n
	}
}

func (t *tally) start(commit string) {
	t.flush()
	t.cursor = commit
	t.hasCursor = true
	t.n = 0
}

// stop stores the running count and drops the cursor, so later "type" keys
// go uncounted until the next commit.
func (t *tally) stop() {
	t.flush()
	t.hasCursor = false
	t.n = 0
}

// CountPerCommit walks a refactoring report in document order and counts the
// "type" keys that follow each "sha1" key, up to the next "sha1" key.
// Keys are visited depth first, so nesting depth does not matter. "type" keys
// that appear before the first "sha1" are not attributed to any commit. A
// null "sha1" closes the current commit and the keys after it count for
// nothing. Any other non-string "sha1" is treated like any other key.
func CountPerCommit(r io.Reader) (map[string]int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	t := &tally{counts: make(map[string]int)}

	tok, err := dec.Token()
	if err == io.EOF {
		return t.counts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrMalformedReport, err)
	}
	if err := walk(dec, tok, t); err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrMalformedReport, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after top-level value", contract.ErrMalformedReport)
	}
	t.flush()
	return t.counts, nil
}

// walk consumes the value that starts with tok.
func walk(dec *json.Decoder, tok json.Token, t *tally) error {
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil // scalar
	}
	switch delim {
	case '{':
		return walkObject(dec, t)
	case '[':
		return walkArray(dec, t)
	default:
		return fmt.Errorf("unexpected delimiter %q", delim)
	}
}

func walkObject(dec *json.Decoder, t *tally) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("object key is %T, not a string", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}

		switch key {
		case commitKey:
			if commit, ok := valTok.(string); ok {
				t.start(commit)
				continue
			}
			if valTok == nil {
				t.stop()
				continue
			}
		case typeKey:
			t.n++
		}
		if err := walk(dec, valTok, t); err != nil {
			return err
		}
	}
	return closeDelim(dec, '}')
}

func walkArray(dec *json.Decoder, t *tally) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if err := walk(dec, tok, t); err != nil {
			return err
		}
	}
	return closeDelim(dec, ']')
}

func closeDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return errors.New("unbalanced JSON delimiters")
	}
	return nil
}
