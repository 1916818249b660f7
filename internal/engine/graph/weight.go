package graph

// Weight is the default payload for callers without domain-specific fields:
// an identifier paired with a type tag.
type Weight[K comparable, T comparable] struct {
	id K
	ty T
}

func NewWeight[K comparable, T comparable](id K, ty T) *Weight[K, T] {
	return &Weight[K, T]{id: id, ty: ty}
}

func (w *Weight[K, T]) GetID() K   { return w.id }
func (w *Weight[K, T]) SetID(id K) { w.id = id }
func (w *Weight[K, T]) GetType() T { return w.ty }

// GenericGraph stores default weights on both nodes and edges.
type GenericGraph[NK, EK, NT, ET comparable] = Graph[NK, EK, NT, ET, *Weight[NK, NT], *Weight[EK, ET]]
