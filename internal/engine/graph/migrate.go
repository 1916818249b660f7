package graph

import (
	"lattice/internal/core/errors"
)

// Migrate rebuilds a store under a new schema version. Every payload is
// passed through its mapping function; returning false drops the entity as
// having no counterpart in the new schema. Nodes are replayed before edges
// through the ordinary add path, so the new schema's checks hold for the
// whole migrated state. Mappings must keep ids unchanged.
//
// Edges are dropped silently when an endpoint node was dropped or when a
// tighter quantity cap in the new schema is already full; which edges
// survive a tighter cap is unspecified. Any other schema rejection aborts
// the migration.
func Migrate[
	NK, EK, NT, ET, NT2, ET2 comparable,
	N Weighted[NK, NT], E Weighted[EK, ET],
	N2 Weighted[NK, NT2], E2 Weighted[EK, ET2],
](
	g *Graph[NK, EK, NT, ET, N, E],
	schema Schema[NT2, ET2],
	mapNode func(N) (N2, bool),
	mapEdge func(E) (E2, bool),
) (*Graph[NK, EK, NT2, ET2, N2, E2], error) {
	out := New[NK, EK, NT2, ET2, N2, E2](schema, g.allocNode, g.allocEdge)

	for id, entry := range g.nodes {
		mapped, keep := mapNode(entry.weight)
		if !keep {
			continue
		}
		if mapped.GetID() != id {
			return nil, errors.AddContext(
				errors.New(errors.CodeInternal, "migration must not change node ids"),
				errors.CtxNodeID, id)
		}
		if _, err := out.AddNode(mapped); err != nil {
			return nil, errors.AddContext(err, errors.CtxNodeID, id)
		}
	}

	for id, entry := range g.edges {
		mapped, keep := mapEdge(entry.weight)
		if !keep {
			continue
		}
		if mapped.GetID() != id {
			return nil, errors.AddContext(
				errors.New(errors.CodeInternal, "migration must not change edge ids"),
				errors.CtxEdgeID, id)
		}
		if !out.HasNode(entry.source) || !out.HasNode(entry.target) {
			continue
		}
		if _, err := out.AddEdge(entry.source, entry.target, mapped); err != nil {
			if errors.IsCode(err, errors.CodeQuantityExceeded) {
				continue
			}
			return nil, errors.AddContext(err, errors.CtxEdgeID, id)
		}
	}

	return out, nil
}

// MigrateTags migrates a default-weight store by rewriting its type tags.
// Ids carry over unchanged; a false mapping drops the node or edge.
func MigrateTags[NK, EK, NT, ET, NT2, ET2 comparable](
	g *GenericGraph[NK, EK, NT, ET],
	schema Schema[NT2, ET2],
	nodeType func(NT) (NT2, bool),
	edgeType func(ET) (ET2, bool),
) (*GenericGraph[NK, EK, NT2, ET2], error) {
	return Migrate(g, schema,
		func(w *Weight[NK, NT]) (*Weight[NK, NT2], bool) {
			ty, ok := nodeType(w.GetType())
			if !ok {
				return nil, false
			}
			return NewWeight(w.GetID(), ty), true
		},
		func(w *Weight[EK, ET]) (*Weight[EK, ET2], bool) {
			ty, ok := edgeType(w.GetType())
			if !ok {
				return nil, false
			}
			return NewWeight(w.GetID(), ty), true
		})
}
