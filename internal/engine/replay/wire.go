package replay

import (
	"encoding/json"

	"lattice/internal/core/errors"
	"lattice/internal/engine/graph"
	"lattice/internal/engine/variant"
)

// Graph is the wire-level store: integer ids, string-or-integer type tags,
// default weights on both sides.
type Graph = graph.GenericGraph[int64, int64, Tag, Tag]

// NewGraph creates an empty wire-level store governed by the policy. Fresh
// ids are the smallest non-negative integers not in use.
func NewGraph(policy *graph.Policy[Tag, Tag]) *Graph {
	return graph.New[int64, int64, Tag, Tag, *graph.Weight[int64, Tag], *graph.Weight[int64, Tag]](
		policy,
		graph.IntAllocator[int64](),
		graph.IntAllocator[int64](),
	)
}

func newWeight(id int64, ty Tag) *graph.Weight[int64, Tag] {
	return graph.NewWeight(id, ty)
}

// weightCodec encodes a default weight as a single-key object mapping the
// type tag to the id. The tag set is open, so there is no closed codec to
// dispatch through; the token is unwrapped by hand instead.
type weightCodec struct{}

func (weightCodec) Encode(w *graph.Weight[int64, Tag]) ([]byte, error) {
	tag := w.GetType()
	// Object keys are strings, so a string tag spelled like an integer
	// would read back as the integer tag. Refuse to emit the ambiguity.
	if !tag.IsInt() && ParseTag(tag.String()) != tag {
		return nil, errors.AddContext(
			errors.New(errors.CodeMalformedEncoding, "string type tag reads back as an integer"),
			errors.CtxTag, tag.String())
	}
	id, err := json.Marshal(w.GetID())
	if err != nil {
		return nil, err
	}
	return variant.Wrap(tag.String(), id)
}

func (weightCodec) Decode(data []byte) (*graph.Weight[int64, Tag], error) {
	tag, payload, err := variant.Unwrap(data)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeMalformedEncoding, "weight token must carry an id"),
			errors.CtxTag, tag)
	}
	var id int64
	if err := json.Unmarshal(payload, &id); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeMalformedEncoding, "weight id must be an integer"),
			errors.CtxTag, tag)
	}
	return graph.NewWeight(id, ParseTag(tag)), nil
}

// Codec builds the snapshot codec for wire-level stores. The schema section
// round-trips through the flat document form.
func Codec() *graph.SnapshotCodec[int64, int64, Tag, Tag, *graph.Weight[int64, Tag], *graph.Weight[int64, Tag]] {
	return &graph.SnapshotCodec[int64, int64, Tag, Tag, *graph.Weight[int64, Tag], *graph.Weight[int64, Tag]]{
		Node:    weightCodec{},
		Edge:    weightCodec{},
		NodeKey: graph.IntKeys[int64](),
		EdgeKey: graph.IntKeys[int64](),
		EncodeSchema: func(s graph.Schema[Tag, Tag]) (json.RawMessage, error) {
			policy, ok := s.(*graph.Policy[Tag, Tag])
			if !ok {
				return nil, errors.New(errors.CodeInternal, "snapshot schema is not a policy")
			}
			return json.Marshal(DocumentFromPolicy(policy))
		},
		DecodeSchema: func(raw json.RawMessage) (graph.Schema[Tag, Tag], error) {
			doc, err := ParseDocument(raw)
			if err != nil {
				return nil, err
			}
			return doc.Policy(), nil
		},
		NodeIDs: graph.IntAllocator[int64](),
		EdgeIDs: graph.IntAllocator[int64](),
	}
}
