package graph

import (
	"encoding/json"
	"sort"
	"strconv"

	"lattice/internal/core/errors"
)

// PayloadCodec turns a payload into its externally tagged wire token and
// back. *variant.Codec satisfies it for closed payload sets.
type PayloadCodec[W any] interface {
	Encode(W) ([]byte, error)
	Decode([]byte) (W, error)
}

// KeyCodec formats identifiers as snapshot table keys and parses them back.
// Table keys are JSON object keys and therefore always strings.
type KeyCodec[K comparable] struct {
	Format func(K) string
	Parse  func(string) (K, error)
}

func IntKeys[K Integer]() KeyCodec[K] {
	return KeyCodec[K]{
		Format: func(k K) string { return strconv.FormatInt(int64(k), 10) },
		Parse: func(s string) (K, error) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				var zero K
				return zero, errors.Wrap(err, errors.CodeMalformedEncoding, "table key is not an integer")
			}
			return K(n), nil
		},
	}
}

func StringKeys[K ~string]() KeyCodec[K] {
	return KeyCodec[K]{
		Format: func(k K) string { return string(k) },
		Parse:  func(s string) (K, error) { return K(s), nil },
	}
}

// SnapshotCodec serializes a graph to and from its canonical snapshot: an
// object holding the schema configuration, the id-keyed node table and the
// id-keyed edge table. Decoding replays every entry through the mutation
// engine, so a snapshot that violates its own schema does not load.
type SnapshotCodec[NK, EK, NT, ET comparable, N Weighted[NK, NT], E Weighted[EK, ET]] struct {
	Node PayloadCodec[N]
	Edge PayloadCodec[E]

	NodeKey KeyCodec[NK]
	EdgeKey KeyCodec[EK]

	EncodeSchema func(Schema[NT, ET]) (json.RawMessage, error)
	DecodeSchema func(json.RawMessage) (Schema[NT, ET], error)

	// Allocators seed the graph rebuilt by Decode.
	NodeIDs Allocator[NK]
	EdgeIDs Allocator[EK]
}

type snapshotDTO struct {
	Schema json.RawMessage            `json:"schema"`
	Nodes  map[string]json.RawMessage `json:"nodes"`
	Edges  map[string]json.RawMessage `json:"edges"`
}

type edgeDTO struct {
	Source  json.RawMessage `json:"source"`
	Target  json.RawMessage `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// Encode produces the snapshot. Object keys are emitted sorted, so equal
// graphs encode to identical bytes.
func (c *SnapshotCodec[NK, EK, NT, ET, N, E]) Encode(g *Graph[NK, EK, NT, ET, N, E]) ([]byte, error) {
	schemaRaw, err := c.EncodeSchema(g.schema)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]json.RawMessage, len(g.nodes))
	for id, entry := range g.nodes {
		token, err := c.Node.Encode(entry.weight)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxNodeID, id)
		}
		nodes[c.NodeKey.Format(id)] = token
	}

	edges := make(map[string]json.RawMessage, len(g.edges))
	for id, entry := range g.edges {
		payload, err := c.Edge.Encode(entry.weight)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxEdgeID, id)
		}
		source, err := json.Marshal(entry.source)
		if err != nil {
			return nil, err
		}
		target, err := json.Marshal(entry.target)
		if err != nil {
			return nil, err
		}
		token, err := json.Marshal(edgeDTO{Source: source, Target: target, Payload: payload})
		if err != nil {
			return nil, err
		}
		edges[c.EdgeKey.Format(id)] = token
	}

	return json.Marshal(snapshotDTO{Schema: schemaRaw, Nodes: nodes, Edges: edges})
}

// Decode rebuilds a graph from snapshot bytes.
func (c *SnapshotCodec[NK, EK, NT, ET, N, E]) Decode(data []byte) (*Graph[NK, EK, NT, ET, N, E], error) {
	var dto snapshotDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedEncoding, "snapshot must be an object")
	}
	if dto.Schema == nil {
		return nil, errors.New(errors.CodeMalformedEncoding, "snapshot is missing its schema")
	}

	schema, err := c.DecodeSchema(dto.Schema)
	if err != nil {
		return nil, err
	}
	g := New[NK, EK, NT, ET, N, E](schema, c.NodeIDs, c.EdgeIDs)

	for _, key := range sortedKeys(dto.Nodes) {
		id, err := c.NodeKey.Parse(key)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxNodeID, key)
		}
		weight, err := c.Node.Decode(dto.Nodes[key])
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxNodeID, key)
		}
		if weight.GetID() != id {
			return nil, errors.AddContext(
				errors.New(errors.CodeMalformedEncoding, "node table key disagrees with payload id"),
				errors.CtxNodeID, key)
		}
		if g.HasNode(id) {
			return nil, errors.AddContext(
				errors.New(errors.CodeMalformedEncoding, "duplicate node id in snapshot"),
				errors.CtxNodeID, key)
		}
		if _, err := g.AddNode(weight); err != nil {
			return nil, errors.AddContext(err, errors.CtxNodeID, key)
		}
	}

	for _, key := range sortedKeys(dto.Edges) {
		id, err := c.EdgeKey.Parse(key)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxEdgeID, key)
		}
		var entry edgeDTO
		if err := json.Unmarshal(dto.Edges[key], &entry); err != nil {
			return nil, errors.Wrap(err, errors.CodeMalformedEncoding, "edge table entry must be an object")
		}
		var source, target NK
		if err := json.Unmarshal(entry.Source, &source); err != nil {
			return nil, errors.Wrap(err, errors.CodeMalformedEncoding, "invalid edge source id")
		}
		if err := json.Unmarshal(entry.Target, &target); err != nil {
			return nil, errors.Wrap(err, errors.CodeMalformedEncoding, "invalid edge target id")
		}
		weight, err := c.Edge.Decode(entry.Payload)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxEdgeID, key)
		}
		if weight.GetID() != id {
			return nil, errors.AddContext(
				errors.New(errors.CodeMalformedEncoding, "edge table key disagrees with payload id"),
				errors.CtxEdgeID, key)
		}
		if g.HasEdge(id) {
			return nil, errors.AddContext(
				errors.New(errors.CodeMalformedEncoding, "duplicate edge id in snapshot"),
				errors.CtxEdgeID, key)
		}
		if _, err := g.AddEdge(source, target, weight); err != nil {
			return nil, errors.AddContext(err, errors.CtxEdgeID, key)
		}
	}

	return g, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
