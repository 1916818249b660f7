package replay

import (
	"lattice/internal/engine/variant"
)

// Action is one replayed mutation. The set is closed; every case is a
// record variant on the wire.
type Action interface {
	isAction()
}

type AddNode struct {
	ID int64 `json:"id"`
	Ty Tag   `json:"ty"`
}

type AddEdge struct {
	ID     int64 `json:"id"`
	Ty     Tag   `json:"ty"`
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

type RemoveNode struct {
	ID int64 `json:"id"`
}

type RemoveEdge struct {
	ID int64 `json:"id"`
}

func (AddNode) isAction()    {}
func (AddEdge) isAction()    {}
func (RemoveNode) isAction() {}
func (RemoveEdge) isAction() {}

// Actions is the wire codec for action batches.
var Actions = variant.MustCodec[Action]("Action",
	variant.Record("AddNode",
		func(a AddNode) Action { return a },
		func(v Action) (AddNode, bool) { a, ok := v.(AddNode); return a, ok }),
	variant.Record("AddEdge",
		func(a AddEdge) Action { return a },
		func(v Action) (AddEdge, bool) { a, ok := v.(AddEdge); return a, ok }),
	variant.Record("RemoveNode",
		func(a RemoveNode) Action { return a },
		func(v Action) (RemoveNode, bool) { a, ok := v.(RemoveNode); return a, ok }),
	variant.Record("RemoveEdge",
		func(a RemoveEdge) Action { return a },
		func(v Action) (RemoveEdge, bool) { a, ok := v.(RemoveEdge); return a, ok }),
)

// actionTag names the variant an action belongs to, for failure reports.
func actionTag(a Action) string {
	switch a.(type) {
	case AddNode:
		return "AddNode"
	case AddEdge:
		return "AddEdge"
	case RemoveNode:
		return "RemoveNode"
	case RemoveEdge:
		return "RemoveEdge"
	}
	return ""
}
