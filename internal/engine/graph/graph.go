package graph

import (
	"lattice/internal/core/errors"
)

// Graph owns the node and edge tables and enforces referential integrity
// between them. All mutation goes through AddNode/AddEdge/RemoveNode/
// RemoveEdge; entries are never constructed into the tables directly.
type Graph[NK, EK, NT, ET comparable, N Weighted[NK, NT], E Weighted[EK, ET]] struct {
	schema Schema[NT, ET]

	nodes map[NK]*nodeEntry[EK, N]
	edges map[EK]*edgeEntry[NK, E]

	allocNode Allocator[NK]
	allocEdge Allocator[EK]
}

type nodeEntry[EK comparable, N any] struct {
	weight   N
	outgoing map[EK]struct{}
	incoming map[EK]struct{}
}

type edgeEntry[NK comparable, E any] struct {
	weight E
	source NK
	target NK
}

// New creates an empty graph governed by schema. The allocators hand out
// replacement ids when an add collides with a live one.
func New[NK, EK, NT, ET comparable, N Weighted[NK, NT], E Weighted[EK, ET]](
	schema Schema[NT, ET],
	nodeIDs Allocator[NK],
	edgeIDs Allocator[EK],
) *Graph[NK, EK, NT, ET, N, E] {
	return &Graph[NK, EK, NT, ET, N, E]{
		schema:    schema,
		nodes:     make(map[NK]*nodeEntry[EK, N]),
		edges:     make(map[EK]*edgeEntry[NK, E]),
		allocNode: nodeIDs,
		allocEdge: edgeIDs,
	}
}

func (g *Graph[NK, EK, NT, ET, N, E]) Schema() Schema[NT, ET] { return g.schema }

func (g *Graph[NK, EK, NT, ET, N, E]) NodeCount() int { return len(g.nodes) }
func (g *Graph[NK, EK, NT, ET, N, E]) EdgeCount() int { return len(g.edges) }

func (g *Graph[NK, EK, NT, ET, N, E]) HasNode(id NK) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph[NK, EK, NT, ET, N, E]) HasEdge(id EK) bool {
	_, ok := g.edges[id]
	return ok
}

// AddNode inserts a node after the schema accepts its type. A colliding id
// is resolved by allocating a fresh one and writing it back into the
// payload; the add itself is never rejected over a collision. Returns the
// id the node was stored under.
func (g *Graph[NK, EK, NT, ET, N, E]) AddNode(node N) (NK, error) {
	var zero NK

	ty := node.GetType()
	if err := g.schema.AllowNode(ty); err != nil {
		return zero, errors.AddContext(schemaReject(err, errors.CodeInvalidType), errors.CtxType, ty)
	}

	id := node.GetID()
	if _, taken := g.nodes[id]; taken {
		id = g.allocNode(g.HasNode)
		node.SetID(id)
	}

	g.nodes[id] = &nodeEntry[EK, N]{
		weight:   node,
		outgoing: make(map[EK]struct{}),
		incoming: make(map[EK]struct{}),
	}
	return id, nil
}

// AddEdge inserts an edge between two live nodes after the schema accepts
// the endpoint triple and its quantities. Id collisions resolve like
// AddNode. Returns the id the edge was stored under.
func (g *Graph[NK, EK, NT, ET, N, E]) AddEdge(source, target NK, edge E) (EK, error) {
	var zero EK

	sn, ok := g.nodes[source]
	if !ok {
		return zero, errors.AddContext(
			errors.New(errors.CodeUnknownID, "edge source is not a live node"),
			errors.CtxNodeID, source)
	}
	tn, ok := g.nodes[target]
	if !ok {
		return zero, errors.AddContext(
			errors.New(errors.CodeUnknownID, "edge target is not a live node"),
			errors.CtxNodeID, target)
	}

	ety := edge.GetType()
	sty := sn.weight.GetType()
	tty := tn.weight.GetType()

	// Quantities are recomputed from live state on every call rather than
	// cached, so interleaved removals can never skew the count.
	quantity := g.countTriple(ety, sty, tty)
	if err := g.schema.AllowEdge(quantity, ety, sty, tty); err != nil {
		return zero, errors.AddContext(schemaReject(err, errors.CodeInvalidType), errors.CtxType, ety)
	}

	if ds, ok := g.schema.(DirectionalSchema[NT, ET]); ok {
		outgoing := g.countIncident(sn.outgoing, ety, sty, tty)
		incoming := g.countIncident(tn.incoming, ety, sty, tty)
		if err := ds.AllowEdgeDirected(outgoing, incoming, ety, sty, tty); err != nil {
			return zero, errors.AddContext(schemaReject(err, errors.CodeInvalidType), errors.CtxType, ety)
		}
	}

	id := edge.GetID()
	if _, taken := g.edges[id]; taken {
		id = g.allocEdge(g.HasEdge)
		edge.SetID(id)
	}

	g.edges[id] = &edgeEntry[NK, E]{weight: edge, source: source, target: target}
	sn.outgoing[id] = struct{}{}
	tn.incoming[id] = struct{}{}
	return id, nil
}

// RemoveNode deletes a node and cascades over every edge touching it. The
// cascade is unconditional: the schema is not consulted and cannot veto it.
// Returns the removed payload.
func (g *Graph[NK, EK, NT, ET, N, E]) RemoveNode(id NK) (N, error) {
	var zero N

	entry, ok := g.nodes[id]
	if !ok {
		return zero, errors.AddContext(
			errors.New(errors.CodeUnknownID, "node is not in the store"),
			errors.CtxNodeID, id)
	}

	// Self-loops appear in both sets; deleteEdge tolerates the second pass.
	for ek := range entry.outgoing {
		g.deleteEdge(ek)
	}
	for ek := range entry.incoming {
		g.deleteEdge(ek)
	}

	delete(g.nodes, id)
	return entry.weight, nil
}

// RemoveEdge deletes a single edge. No cascade. Returns the removed payload.
func (g *Graph[NK, EK, NT, ET, N, E]) RemoveEdge(id EK) (E, error) {
	var zero E

	entry, ok := g.edges[id]
	if !ok {
		return zero, errors.AddContext(
			errors.New(errors.CodeUnknownID, "edge is not in the store"),
			errors.CtxEdgeID, id)
	}
	g.deleteEdge(id)
	return entry.weight, nil
}

// GetNode returns the stored node payload. Payloads are read-only from the
// store's point of view; replacing one means remove then add.
func (g *Graph[NK, EK, NT, ET, N, E]) GetNode(id NK) (N, error) {
	entry, ok := g.nodes[id]
	if !ok {
		var zero N
		return zero, errors.AddContext(
			errors.New(errors.CodeUnknownID, "node is not in the store"),
			errors.CtxNodeID, id)
	}
	return entry.weight, nil
}

// GetEdge returns the stored edge payload.
func (g *Graph[NK, EK, NT, ET, N, E]) GetEdge(id EK) (E, error) {
	entry, ok := g.edges[id]
	if !ok {
		var zero E
		return zero, errors.AddContext(
			errors.New(errors.CodeUnknownID, "edge is not in the store"),
			errors.CtxEdgeID, id)
	}
	return entry.weight, nil
}

// GetEdgeFull returns the edge payload together with its endpoints.
func (g *Graph[NK, EK, NT, ET, N, E]) GetEdgeFull(id EK) (EdgeRef[NK, E], error) {
	entry, ok := g.edges[id]
	if !ok {
		return EdgeRef[NK, E]{}, errors.AddContext(
			errors.New(errors.CodeUnknownID, "edge is not in the store"),
			errors.CtxEdgeID, id)
	}
	return EdgeRef[NK, E]{Source: entry.source, Target: entry.target, Weight: entry.weight}, nil
}

// Outgoing returns the edges leaving the node, in unspecified order.
func (g *Graph[NK, EK, NT, ET, N, E]) Outgoing(id NK) ([]EdgeRef[NK, E], error) {
	entry, ok := g.nodes[id]
	if !ok {
		return nil, errors.AddContext(
			errors.New(errors.CodeUnknownID, "node is not in the store"),
			errors.CtxNodeID, id)
	}
	return g.collectRefs(entry.outgoing), nil
}

// Incoming returns the edges entering the node, in unspecified order.
func (g *Graph[NK, EK, NT, ET, N, E]) Incoming(id NK) ([]EdgeRef[NK, E], error) {
	entry, ok := g.nodes[id]
	if !ok {
		return nil, errors.AddContext(
			errors.New(errors.CodeUnknownID, "node is not in the store"),
			errors.CtxNodeID, id)
	}
	return g.collectRefs(entry.incoming), nil
}

// NodeIDs returns the live node ids in unspecified order.
func (g *Graph[NK, EK, NT, ET, N, E]) NodeIDs() []NK {
	ids := make([]NK, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// EdgeIDs returns the live edge ids in unspecified order.
func (g *Graph[NK, EK, NT, ET, N, E]) EdgeIDs() []EK {
	ids := make([]EK, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	return ids
}

// Nodes returns the live node payloads in unspecified order.
func (g *Graph[NK, EK, NT, ET, N, E]) Nodes() []N {
	out := make([]N, 0, len(g.nodes))
	for _, entry := range g.nodes {
		out = append(out, entry.weight)
	}
	return out
}

// Edges returns the live edges with endpoints in unspecified order.
func (g *Graph[NK, EK, NT, ET, N, E]) Edges() []EdgeRef[NK, E] {
	out := make([]EdgeRef[NK, E], 0, len(g.edges))
	for _, entry := range g.edges {
		out = append(out, EdgeRef[NK, E]{Source: entry.source, Target: entry.target, Weight: entry.weight})
	}
	return out
}

// EqualStructure reports whether two graphs hold the same node and edge
// tables: same ids, same types, same endpoints. Payload fields beyond the
// capability surface are not compared.
func (g *Graph[NK, EK, NT, ET, N, E]) EqualStructure(other *Graph[NK, EK, NT, ET, N, E]) bool {
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for id, entry := range g.nodes {
		oe, ok := other.nodes[id]
		if !ok || entry.weight.GetType() != oe.weight.GetType() {
			return false
		}
	}
	for id, entry := range g.edges {
		oe, ok := other.edges[id]
		if !ok ||
			entry.weight.GetType() != oe.weight.GetType() ||
			entry.source != oe.source ||
			entry.target != oe.target {
			return false
		}
	}
	return true
}

// deleteEdge unlinks an edge from both endpoint sets and drops it. Safe to
// call twice for the same id (self-loop cascades do).
func (g *Graph[NK, EK, NT, ET, N, E]) deleteEdge(id EK) {
	entry, ok := g.edges[id]
	if !ok {
		return
	}
	if sn, ok := g.nodes[entry.source]; ok {
		delete(sn.outgoing, id)
	}
	if tn, ok := g.nodes[entry.target]; ok {
		delete(tn.incoming, id)
	}
	delete(g.edges, id)
}

func (g *Graph[NK, EK, NT, ET, N, E]) countTriple(ety ET, sty, tty NT) int {
	count := 0
	for _, entry := range g.edges {
		if entry.weight.GetType() != ety {
			continue
		}
		if g.nodes[entry.source].weight.GetType() != sty {
			continue
		}
		if g.nodes[entry.target].weight.GetType() != tty {
			continue
		}
		count++
	}
	return count
}

func (g *Graph[NK, EK, NT, ET, N, E]) countIncident(set map[EK]struct{}, ety ET, sty, tty NT) int {
	count := 0
	for ek := range set {
		entry := g.edges[ek]
		if entry.weight.GetType() != ety {
			continue
		}
		if g.nodes[entry.source].weight.GetType() != sty {
			continue
		}
		if g.nodes[entry.target].weight.GetType() != tty {
			continue
		}
		count++
	}
	return count
}

func (g *Graph[NK, EK, NT, ET, N, E]) collectRefs(set map[EK]struct{}) []EdgeRef[NK, E] {
	out := make([]EdgeRef[NK, E], 0, len(set))
	for ek := range set {
		entry := g.edges[ek]
		out = append(out, EdgeRef[NK, E]{Source: entry.source, Target: entry.target, Weight: entry.weight})
	}
	return out
}
