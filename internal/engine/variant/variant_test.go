package variant

import (
	"strings"
	"testing"

	"lattice/internal/core/errors"
)

// Test fixture: a small shape set with one variant of each kind.
type shape interface{ isShape() }

type circle struct{}

type square struct {
	Side int `json:"side"`
}

type label string

func (circle) isShape() {}
func (square) isShape() {}
func (label) isShape()  {}

func shapes(t *testing.T) *Codec[shape] {
	t.Helper()
	c, err := NewCodec[shape]("Shape",
		Unit("Circle", shape(circle{}), func(v shape) bool { _, ok := v.(circle); return ok }),
		Record("Square",
			func(s square) shape { return s },
			func(v shape) (square, bool) { s, ok := v.(square); return s, ok }),
		Value("Label",
			func(s string) shape { return label(s) },
			func(v shape) (string, bool) { l, ok := v.(label); return string(l), ok }),
	)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDecodeUnitVariant(t *testing.T) {
	c := shapes(t)

	v, err := c.Decode([]byte(`"Circle"`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := v.(circle); !ok {
		t.Fatalf("expected circle, got %T", v)
	}
}

func TestDecodeRecordVariant(t *testing.T) {
	c := shapes(t)

	v, err := c.Decode([]byte(`{"Square":{"side":3}}`))
	if err != nil {
		t.Fatal(err)
	}
	s, ok := v.(square)
	if !ok {
		t.Fatalf("expected square, got %T", v)
	}
	if s.Side != 3 {
		t.Errorf("expected side 3, got %d", s.Side)
	}
}

func TestDecodeValueVariant(t *testing.T) {
	c := shapes(t)

	v, err := c.Decode([]byte(`{"Label":"exit"}`))
	if err != nil {
		t.Fatal(err)
	}
	if l, ok := v.(label); !ok || l != "exit" {
		t.Fatalf("expected label exit, got %#v", v)
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	c := shapes(t)

	cases := []string{
		`"Triangle"`,
		`{"Triangle":{"side":3}}`,
	}
	for _, in := range cases {
		if _, err := c.Decode([]byte(in)); !errors.IsCode(err, errors.CodeUnknownVariant) {
			t.Errorf("Decode(%s): expected UNKNOWN_VARIANT, got %v", in, err)
		}
	}
}

func TestDecodeBareStringForPayloadVariant(t *testing.T) {
	c := shapes(t)

	// A bare string can only ever name a unit variant.
	if _, err := c.Decode([]byte(`"Square"`)); !errors.IsCode(err, errors.CodeUnknownVariant) {
		t.Errorf("expected UNKNOWN_VARIANT, got %v", err)
	}
}

func TestDecodeKeyedUnitVariant(t *testing.T) {
	c := shapes(t)

	if _, err := c.Decode([]byte(`{"Circle":{}}`)); !errors.IsCode(err, errors.CodeMalformedEncoding) {
		t.Errorf("expected MALFORMED_ENCODING, got %v", err)
	}
}

func TestDecodeAmbiguousObject(t *testing.T) {
	c := shapes(t)

	cases := []string{
		`{}`,
		`{"Square":{"side":1},"Label":"x"}`,
	}
	for _, in := range cases {
		if _, err := c.Decode([]byte(in)); !errors.IsCode(err, errors.CodeAmbiguousVariant) {
			t.Errorf("Decode(%s): expected AMBIGUOUS_VARIANT, got %v", in, err)
		}
	}
}

func TestDecodeMalformedTokens(t *testing.T) {
	c := shapes(t)

	cases := []string{
		``,
		`42`,
		`[1,2]`,
		`{"Square":[1,2]}`, // record payload must be an object
	}
	for _, in := range cases {
		if _, err := c.Decode([]byte(in)); !errors.IsCode(err, errors.CodeMalformedEncoding) {
			t.Errorf("Decode(%q): expected MALFORMED_ENCODING, got %v", in, err)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	c := shapes(t)

	for _, v := range []shape{circle{}, square{Side: 7}, label("door")} {
		token, err := c.Encode(v)
		if err != nil {
			t.Fatal(err)
		}
		back, err := c.Decode(token)
		if err != nil {
			t.Fatalf("Decode(%s): %v", token, err)
		}
		if back != v {
			t.Errorf("round trip changed %#v into %#v", v, back)
		}
	}
}

func TestEncodeUnitIsBareString(t *testing.T) {
	c := shapes(t)

	token, err := c.Encode(circle{})
	if err != nil {
		t.Fatal(err)
	}
	if string(token) != `"Circle"` {
		t.Errorf("expected bare string tag, got %s", token)
	}
}

func TestNestedVariantPayload(t *testing.T) {
	// A tagged token nested as the payload of an outer tag: the outer layer
	// unwraps, the payload decodes with the inner set's codec.
	inner := shapes(t)

	tag, payload, err := Unwrap([]byte(`{"Boxed":{"Square":{"side":5}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if tag != "Boxed" {
		t.Fatalf("expected tag Boxed, got %s", tag)
	}
	v, err := inner.Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := v.(square); !ok || s.Side != 5 {
		t.Errorf("expected nested square with side 5, got %#v", v)
	}
}

func TestDuplicateTagRejected(t *testing.T) {
	_, err := NewCodec[shape]("Shape",
		Unit("Circle", shape(circle{}), func(v shape) bool { _, ok := v.(circle); return ok }),
		Unit("Circle", shape(circle{}), func(v shape) bool { _, ok := v.(circle); return ok }),
	)
	if err == nil {
		t.Fatal("expected duplicate tag to be rejected")
	}
}

func TestDecodeBatch(t *testing.T) {
	c := shapes(t)

	vs, err := c.DecodeBatch([]byte(`["Circle",{"Square":{"side":2}},{"Label":"a"}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(vs) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vs))
	}
}

func TestDecodeBatchReportsIndexAndTag(t *testing.T) {
	c := shapes(t)

	_, err := c.DecodeBatch([]byte(`["Circle","Triangle"]`))
	if !errors.IsCode(err, errors.CodeUnknownVariant) {
		t.Fatalf("expected UNKNOWN_VARIANT, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "action_index:1") {
		t.Errorf("expected error to carry the failing index, got %s", msg)
	}
	if !strings.Contains(msg, "Triangle") {
		t.Errorf("expected error to carry the offending tag, got %s", msg)
	}
}

func TestDecodeBatchNonArray(t *testing.T) {
	c := shapes(t)

	if _, err := c.DecodeBatch([]byte(`{"Circle":null}`)); !errors.IsCode(err, errors.CodeMalformedEncoding) {
		t.Errorf("expected MALFORMED_ENCODING, got %v", err)
	}
}

func TestPeekTag(t *testing.T) {
	if tag := PeekTag([]byte(`{"Square":{"side":1}}`)); tag != "Square" {
		t.Errorf("expected Square, got %q", tag)
	}
	if tag := PeekTag([]byte(`"Circle"`)); tag != "Circle" {
		t.Errorf("expected Circle, got %q", tag)
	}
	if tag := PeekTag([]byte(`42`)); tag != "" {
		t.Errorf("expected empty tag, got %q", tag)
	}
}
