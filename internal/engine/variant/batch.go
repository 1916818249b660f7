package variant

import (
	"encoding/json"

	"lattice/internal/core/errors"
)

// DecodeBatch parses an array of tagged tokens, decoding each element
// independently. The first malformed element aborts the whole batch; the
// returned error carries the 0-based index and the offending tag.
func (c *Codec[T]) DecodeBatch(data []byte) ([]T, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedEncoding, "batch must be an array")
	}

	out := make([]T, 0, len(raw))
	for i, token := range raw {
		v, err := c.Decode(token)
		if err != nil {
			err = errors.AddContext(err, errors.CtxAction, i)
			if tag := PeekTag(token); tag != "" {
				err = errors.AddContext(err, errors.CtxTag, tag)
			}
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeBatch encodes values into a tagged array.
func (c *Codec[T]) EncodeBatch(vs []T) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(vs))
	for i, v := range vs {
		token, err := c.Encode(v)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxAction, i)
		}
		raw = append(raw, token)
	}
	return json.Marshal(raw)
}
