package graph

import (
	"testing"

	"lattice/internal/core/errors"
)

func openGraph(t *testing.T) *GenericGraph[int64, int64, string, string] {
	t.Helper()
	return newTestGraph(t, &Policy[string, string]{})
}

func newTestGraph(t *testing.T, p *Policy[string, string]) *GenericGraph[int64, int64, string, string] {
	t.Helper()
	return New[int64, int64, string, string, *Weight[int64, string], *Weight[int64, string]](
		p, IntAllocator[int64](), IntAllocator[int64]())
}

func mustAddNode(t *testing.T, g *GenericGraph[int64, int64, string, string], id int64, ty string) int64 {
	t.Helper()
	got, err := g.AddNode(NewWeight(id, ty))
	if err != nil {
		t.Fatalf("AddNode(%d, %s): %v", id, ty, err)
	}
	return got
}

func mustAddEdge(t *testing.T, g *GenericGraph[int64, int64, string, string], id, source, target int64, ty string) int64 {
	t.Helper()
	got, err := g.AddEdge(source, target, NewWeight(id, ty))
	if err != nil {
		t.Fatalf("AddEdge(%d, %d->%d, %s): %v", id, source, target, ty, err)
	}
	return got
}

func TestAddNodeKeepsRequestedID(t *testing.T) {
	g := openGraph(t)

	if id := mustAddNode(t, g, 7, "A"); id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}
	if !g.HasNode(7) {
		t.Error("node 7 should be live")
	}
}

func TestAddNodeCollisionReallocates(t *testing.T) {
	g := openGraph(t)

	first := mustAddNode(t, g, 0, "A")
	second := mustAddNode(t, g, 0, "A")

	if first != 0 {
		t.Errorf("first add should keep id 0, got %d", first)
	}
	if second != 1 {
		t.Errorf("second add should be moved to id 1, got %d", second)
	}
	if g.NodeCount() != 2 {
		t.Errorf("expected 2 live nodes, got %d", g.NodeCount())
	}

	// The payload's own id follows the reallocation.
	w, err := g.GetNode(second)
	if err != nil {
		t.Fatal(err)
	}
	if w.GetID() != second {
		t.Errorf("payload id %d disagrees with stored id %d", w.GetID(), second)
	}
}

func TestAddEdgeCollisionReallocates(t *testing.T) {
	g := openGraph(t)
	mustAddNode(t, g, 0, "A")
	mustAddNode(t, g, 1, "A")

	first := mustAddEdge(t, g, 0, 0, 1, "E")
	second := mustAddEdge(t, g, 0, 1, 0, "E")

	if first != 0 || second != 1 {
		t.Errorf("expected edge ids 0 and 1, got %d and %d", first, second)
	}
}

func TestAddEdgeUnknownEndpoint(t *testing.T) {
	g := openGraph(t)
	mustAddNode(t, g, 0, "A")

	if _, err := g.AddEdge(0, 99, NewWeight[int64](0, "E")); !errors.IsCode(err, errors.CodeUnknownID) {
		t.Errorf("expected UNKNOWN_ID for missing target, got %v", err)
	}
	if _, err := g.AddEdge(99, 0, NewWeight[int64](0, "E")); !errors.IsCode(err, errors.CodeUnknownID) {
		t.Errorf("expected UNKNOWN_ID for missing source, got %v", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("failed adds must not leave edges behind, got %d", g.EdgeCount())
	}
}

func TestSelfLoop(t *testing.T) {
	g := openGraph(t)
	mustAddNode(t, g, 0, "A")
	mustAddEdge(t, g, 0, 0, 0, "E")

	out, err := g.Outgoing(0)
	if err != nil {
		t.Fatal(err)
	}
	in, err := g.Incoming(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || len(in) != 1 {
		t.Errorf("self loop should appear once in each direction, got %d out, %d in", len(out), len(in))
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	g := openGraph(t)
	mustAddNode(t, g, 0, "A")
	mustAddNode(t, g, 1, "A")
	mustAddNode(t, g, 2, "A")
	mustAddEdge(t, g, 0, 0, 1, "E") // incoming
	mustAddEdge(t, g, 1, 1, 2, "E") // outgoing
	mustAddEdge(t, g, 2, 1, 1, "E") // self loop on the removed node
	mustAddEdge(t, g, 3, 0, 2, "E") // untouched

	w, err := g.RemoveNode(1)
	if err != nil {
		t.Fatal(err)
	}
	if w.GetID() != 1 {
		t.Errorf("expected removed payload id 1, got %d", w.GetID())
	}

	if g.HasNode(1) {
		t.Error("node 1 should be gone")
	}
	for _, id := range []int64{0, 1, 2} {
		if g.HasEdge(id) {
			t.Errorf("edge %d should have been cascaded away", id)
		}
	}
	if !g.HasEdge(3) {
		t.Error("edge 3 does not touch node 1 and must survive")
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("expected 2 nodes and 1 edge, got %d and %d", g.NodeCount(), g.EdgeCount())
	}
}

func TestRemoveEdgeDoesNotCascade(t *testing.T) {
	g := openGraph(t)
	mustAddNode(t, g, 0, "A")
	mustAddNode(t, g, 1, "A")
	mustAddEdge(t, g, 0, 0, 1, "E")

	w, err := g.RemoveEdge(0)
	if err != nil {
		t.Fatal(err)
	}
	if w.GetID() != 0 {
		t.Errorf("expected removed payload id 0, got %d", w.GetID())
	}
	if g.NodeCount() != 2 {
		t.Error("removing an edge must not touch nodes")
	}

	out, _ := g.Outgoing(0)
	if len(out) != 0 {
		t.Error("adjacency should be empty after the removal")
	}
}

func TestRemoveUnknownIDs(t *testing.T) {
	g := openGraph(t)

	if _, err := g.RemoveNode(5); !errors.IsCode(err, errors.CodeUnknownID) {
		t.Errorf("expected UNKNOWN_ID, got %v", err)
	}
	if _, err := g.RemoveEdge(5); !errors.IsCode(err, errors.CodeUnknownID) {
		t.Errorf("expected UNKNOWN_ID, got %v", err)
	}
}

func TestSchemaGatesNodeAdds(t *testing.T) {
	g := newTestGraph(t, &Policy[string, string]{
		NodeWhitelist: []string{"A"},
	})

	mustAddNode(t, g, 0, "A")
	if _, err := g.AddNode(NewWeight[int64](1, "B")); !errors.IsCode(err, errors.CodeInvalidType) {
		t.Errorf("expected INVALID_TYPE, got %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("rejected add must not mutate, got %d nodes", g.NodeCount())
	}
}

func TestQuantityRecomputedAfterRemoval(t *testing.T) {
	triple := Endpoint[string, string]{Edge: "E", Source: "A", Target: "A"}
	g := newTestGraph(t, &Policy[string, string]{
		EndpointMaxQuantity: map[Endpoint[string, string]]int{triple: 1},
	})
	mustAddNode(t, g, 0, "A")
	mustAddNode(t, g, 1, "A")

	mustAddEdge(t, g, 0, 0, 1, "E")
	if _, err := g.AddEdge(1, 0, NewWeight[int64](1, "E")); !errors.IsCode(err, errors.CodeQuantityExceeded) {
		t.Fatalf("expected QUANTITY_EXCEEDED at the cap, got %v", err)
	}

	// Removing the edge frees the quantity again.
	if _, err := g.RemoveEdge(0); err != nil {
		t.Fatal(err)
	}
	mustAddEdge(t, g, 1, 1, 0, "E")
}

func TestDirectionalCapsCountPerNode(t *testing.T) {
	triple := Endpoint[string, string]{Edge: "E", Source: "A", Target: "B"}
	g := newTestGraph(t, &Policy[string, string]{
		OutgoingMaxQuantity: map[Endpoint[string, string]]int{triple: 1},
	})
	mustAddNode(t, g, 0, "A")
	mustAddNode(t, g, 1, "A")
	mustAddNode(t, g, 2, "B")
	mustAddNode(t, g, 3, "B")

	mustAddEdge(t, g, 0, 0, 2, "E")
	if _, err := g.AddEdge(0, 3, NewWeight[int64](1, "E")); !errors.IsCode(err, errors.CodeQuantityExceeded) {
		t.Fatalf("source 0 is at its outgoing cap, got %v", err)
	}

	// A different source node has its own budget.
	mustAddEdge(t, g, 1, 1, 2, "E")
}

func TestGetEdgeFull(t *testing.T) {
	g := openGraph(t)
	mustAddNode(t, g, 0, "A")
	mustAddNode(t, g, 1, "B")
	mustAddEdge(t, g, 4, 0, 1, "E")

	ref, err := g.GetEdgeFull(4)
	if err != nil {
		t.Fatal(err)
	}
	if ref.Source != 0 || ref.Target != 1 || ref.Weight.GetType() != "E" {
		t.Errorf("unexpected edge ref %+v", ref)
	}
}

func TestEqualStructure(t *testing.T) {
	build := func() *GenericGraph[int64, int64, string, string] {
		g := openGraph(t)
		mustAddNode(t, g, 0, "A")
		mustAddNode(t, g, 1, "B")
		mustAddEdge(t, g, 0, 0, 1, "E")
		return g
	}

	a, b := build(), build()
	if !a.EqualStructure(b) {
		t.Error("identically built graphs should be structurally equal")
	}

	if _, err := b.RemoveEdge(0); err != nil {
		t.Fatal(err)
	}
	if a.EqualStructure(b) {
		t.Error("graphs with different edge tables should differ")
	}
}

func TestUUIDAllocator(t *testing.T) {
	alloc := UUIDAllocator[string]()
	a := alloc(func(string) bool { return false })
	b := alloc(func(string) bool { return false })
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
