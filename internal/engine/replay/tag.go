// Package replay implements the wire-level surface of the store: tagged
// action batches, schema configuration documents, and the boundary function
// that replays a batch into a snapshot.
package replay

import (
	"bytes"
	"encoding/json"
	"strconv"

	"lattice/internal/core/errors"
)

// Tag is a wire-level type tag backed by either a string or an integer.
// Equality is by underlying value, so IntTag(0) and StringTag("0") are
// distinct tags.
type Tag struct {
	str   string
	num   int64
	isNum bool
}

func StringTag(s string) Tag { return Tag{str: s} }
func IntTag(n int64) Tag     { return Tag{num: n, isNum: true} }

func (t Tag) IsInt() bool { return t.isNum }

// String returns the canonical text form, used as the external tag of
// payloads and as snapshot table annotations.
func (t Tag) String() string {
	if t.isNum {
		return strconv.FormatInt(t.num, 10)
	}
	return t.str
}

// ParseTag reads a canonical text form back: integer literals become
// integer tags, everything else stays a string tag.
func ParseTag(s string) Tag {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntTag(n)
	}
	return StringTag(s)
}

func (t Tag) MarshalJSON() ([]byte, error) {
	if t.isNum {
		return []byte(strconv.FormatInt(t.num, 10)), nil
	}
	return json.Marshal(t.str)
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New(errors.CodeMalformedEncoding, "empty type tag")
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return errors.Wrap(err, errors.CodeMalformedEncoding, "invalid string tag")
		}
		*t = StringTag(s)
		return nil
	}
	n, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		return errors.Wrap(err, errors.CodeMalformedEncoding, "type tag must be a string or an integer")
	}
	*t = IntTag(n)
	return nil
}
