// Package variant implements externally tagged encoding for closed sets of
// variants. A variant either carries no payload (unit), a single inner value,
// or a record of named fields. On the wire a unit variant is a bare string
// equal to its tag, anything else is a single-key object keyed by the tag.
package variant

import (
	"bytes"
	"encoding/json"

	"lattice/internal/core/errors"
)

// Kind classifies how a variant carries its payload on the wire.
type Kind int

const (
	KindUnit Kind = iota
	KindValue
	KindRecord
)

// Variant describes one case of a closed set. Decode and Encode handle only
// the payload; tag wrapping and unwrapping belongs to the codec.
type Variant[T any] struct {
	Tag  string
	Kind Kind

	// Decode builds the variant value from its payload token. Unit variants
	// are called with a nil payload.
	Decode func(payload json.RawMessage) (T, error)

	// Encode produces the payload token for a value of this variant. Unit
	// variants return nil.
	Encode func(v T) (json.RawMessage, error)

	// Match reports whether v belongs to this variant.
	Match func(v T) bool
}

// Unit declares a payload-less variant represented by value.
func Unit[T any](tag string, value T, match func(T) bool) *Variant[T] {
	return &Variant[T]{
		Tag:  tag,
		Kind: KindUnit,
		Decode: func(json.RawMessage) (T, error) {
			return value, nil
		},
		Encode: func(T) (json.RawMessage, error) {
			return nil, nil
		},
		Match: match,
	}
}

// Value declares a variant carrying one inner value of type P. The inner
// value encodes with its own JSON representation, so P may itself be backed
// by another variant set.
func Value[T, P any](tag string, wrap func(P) T, unwrap func(T) (P, bool)) *Variant[T] {
	return payloadVariant(tag, KindValue, wrap, unwrap)
}

// Record declares a variant carrying named fields. P is the field struct;
// its wire form must be an object.
func Record[T, P any](tag string, wrap func(P) T, unwrap func(T) (P, bool)) *Variant[T] {
	return payloadVariant(tag, KindRecord, wrap, unwrap)
}

func payloadVariant[T, P any](tag string, kind Kind, wrap func(P) T, unwrap func(T) (P, bool)) *Variant[T] {
	return &Variant[T]{
		Tag:  tag,
		Kind: kind,
		Decode: func(payload json.RawMessage) (T, error) {
			var p P
			if err := json.Unmarshal(payload, &p); err != nil {
				var zero T
				return zero, errors.AddContext(
					errors.Wrap(err, errors.CodeMalformedEncoding, "invalid variant payload"),
					errors.CtxTag, tag)
			}
			return wrap(p), nil
		},
		Encode: func(v T) (json.RawMessage, error) {
			p, ok := unwrap(v)
			if !ok {
				return nil, errors.AddContext(
					errors.New(errors.CodeInternal, "value does not belong to variant"),
					errors.CtxTag, tag)
			}
			return json.Marshal(p)
		},
		Match: func(v T) bool {
			_, ok := unwrap(v)
			return ok
		},
	}
}

// Codec encodes and decodes values of one closed, ordered variant set.
type Codec[T any] struct {
	name     string
	variants []*Variant[T]
	byTag    map[string]*Variant[T]
}

// NewCodec builds a codec over the given variants. Tags must be unique
// within the set.
func NewCodec[T any](name string, variants ...*Variant[T]) (*Codec[T], error) {
	c := &Codec[T]{
		name:     name,
		variants: variants,
		byTag:    make(map[string]*Variant[T], len(variants)),
	}
	for _, v := range variants {
		if _, dup := c.byTag[v.Tag]; dup {
			return nil, errors.AddContext(
				errors.Newf(errors.CodeInternal, "duplicate variant tag in set %s", name),
				errors.CtxTag, v.Tag)
		}
		c.byTag[v.Tag] = v
	}
	return c, nil
}

// MustCodec is NewCodec for statically declared sets.
func MustCodec[T any](name string, variants ...*Variant[T]) *Codec[T] {
	c, err := NewCodec(name, variants...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Codec[T]) Name() string { return c.name }

// Tags returns the tags of the set in declaration order.
func (c *Codec[T]) Tags() []string {
	tags := make([]string, len(c.variants))
	for i, v := range c.variants {
		tags[i] = v.Tag
	}
	return tags
}

// Decode parses an externally tagged token into the variant it originated
// from. Inputs that do not match exactly one known tag are rejected.
func (c *Codec[T]) Decode(data []byte) (T, error) {
	var zero T

	tag, payload, err := Unwrap(data)
	if err != nil {
		return zero, err
	}

	v, ok := c.byTag[tag]
	if !ok {
		return zero, errors.AddContext(
			errors.Newf(errors.CodeUnknownVariant, "no variant in set %s matches tag", c.name),
			errors.CtxTag, tag)
	}

	if payload == nil {
		// Bare strings only ever produce unit variants.
		if v.Kind != KindUnit {
			return zero, errors.AddContext(
				errors.Newf(errors.CodeUnknownVariant, "tag in set %s does not name a unit variant", c.name),
				errors.CtxTag, tag)
		}
		return v.Decode(nil)
	}

	if v.Kind == KindUnit {
		return zero, errors.AddContext(
			errors.New(errors.CodeMalformedEncoding, "unit variant carries no payload"),
			errors.CtxTag, tag)
	}
	if v.Kind == KindRecord && !startsWith(payload, '{') {
		return zero, errors.AddContext(
			errors.New(errors.CodeMalformedEncoding, "record variant payload must be an object"),
			errors.CtxTag, tag)
	}
	return v.Decode(payload)
}

// Encode produces the externally tagged form of v. The first declared
// variant whose Match accepts v wins.
func (c *Codec[T]) Encode(v T) ([]byte, error) {
	for _, variant := range c.variants {
		if !variant.Match(v) {
			continue
		}
		if variant.Kind == KindUnit {
			return Wrap(variant.Tag, nil)
		}
		payload, err := variant.Encode(v)
		if err != nil {
			return nil, err
		}
		return Wrap(variant.Tag, payload)
	}
	return nil, errors.Newf(errors.CodeUnknownVariant, "value matches no variant in set %s", c.name)
}

// Unwrap splits an externally tagged token into tag and payload. A bare
// string yields its tag with a nil payload. An object must hold exactly one
// key; zero or several keys are ambiguous. Everything else is malformed.
func Unwrap(data []byte) (string, json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", nil, errors.New(errors.CodeMalformedEncoding, "empty variant token")
	}

	switch trimmed[0] {
	case '"':
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return "", nil, errors.Wrap(err, errors.CodeMalformedEncoding, "invalid string token")
		}
		return tag, nil, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return "", nil, errors.Wrap(err, errors.CodeMalformedEncoding, "invalid object token")
		}
		if len(fields) != 1 {
			return "", nil, errors.Newf(errors.CodeAmbiguousVariant,
				"tagged object must hold exactly one key, found %d", len(fields))
		}
		for tag, payload := range fields {
			return tag, payload, nil
		}
	}
	return "", nil, errors.New(errors.CodeMalformedEncoding, "variant token must be a string or a single-key object")
}

// Wrap builds the externally tagged form: a bare string for nil payloads,
// otherwise a single-key object.
func Wrap(tag string, payload json.RawMessage) ([]byte, error) {
	if payload == nil {
		return json.Marshal(tag)
	}
	return json.Marshal(map[string]json.RawMessage{tag: payload})
}

// PeekTag extracts the tag of a token without decoding it. Returns "" when
// no tag can be determined.
func PeekTag(data []byte) string {
	tag, _, err := Unwrap(data)
	if err != nil {
		return ""
	}
	return tag
}

func startsWith(data []byte, b byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == b
}
