package graph

import (
	"slices"

	"lattice/internal/core/errors"
)

// Endpoint is the unit the policy's edge rules operate over: an edge type
// between a source node type and a target node type.
type Endpoint[NT comparable, ET comparable] struct {
	Edge   ET
	Source NT
	Target NT
}

// Policy is the reference Schema implementation, driven entirely by
// allow/deny lists and quantity caps.
//
// A nil whitelist places no restriction; an empty one rejects everything.
// Blacklist membership rejects regardless of any whitelist outcome. Caps
// bound how many edges of an endpoint triple may coexist: the aggregate cap
// counts across the whole graph, the directional caps count per concrete
// source or target node.
type Policy[NT comparable, ET comparable] struct {
	PolicyName string

	NodeWhitelist []NT
	NodeBlacklist []NT
	EdgeWhitelist []ET
	EdgeBlacklist []ET

	EndpointWhitelist []Endpoint[NT, ET]
	EndpointBlacklist []Endpoint[NT, ET]

	EndpointMaxQuantity map[Endpoint[NT, ET]]int
	OutgoingMaxQuantity map[Endpoint[NT, ET]]int
	IncomingMaxQuantity map[Endpoint[NT, ET]]int
}

var (
	_ Schema[string, string]            = (*Policy[string, string])(nil)
	_ DirectionalSchema[string, string] = (*Policy[string, string])(nil)
)

func (p *Policy[NT, ET]) Name() string {
	if p.PolicyName == "" {
		return "Policy"
	}
	return p.PolicyName
}

// AllowNode accepts a node type that passes both node lists.
func (p *Policy[NT, ET]) AllowNode(ty NT) error {
	if !passes(p.NodeWhitelist, p.NodeBlacklist, ty) {
		return errors.New(errors.CodeInvalidType, "node type rejected by policy")
	}
	return nil
}

// AllowEdge accepts an edge whose type passes the edge lists, whose
// endpoint triple passes the endpoint lists, and whose aggregate quantity
// stays below any configured cap.
func (p *Policy[NT, ET]) AllowEdge(quantity int, edge ET, source, target NT) error {
	endpoint := Endpoint[NT, ET]{Edge: edge, Source: source, Target: target}

	if !passes(p.EdgeWhitelist, p.EdgeBlacklist, edge) ||
		!passes(p.EndpointWhitelist, p.EndpointBlacklist, endpoint) {
		return errors.New(errors.CodeInvalidType, "edge endpoint rejected by policy")
	}

	if limit, ok := p.EndpointMaxQuantity[endpoint]; ok && quantity >= limit {
		return errors.Newf(errors.CodeQuantityExceeded,
			"endpoint already holds %d of at most %d edges", quantity, limit)
	}
	return nil
}

// AllowEdgeDirected enforces the per-node caps.
func (p *Policy[NT, ET]) AllowEdgeDirected(outgoing, incoming int, edge ET, source, target NT) error {
	endpoint := Endpoint[NT, ET]{Edge: edge, Source: source, Target: target}

	if limit, ok := p.OutgoingMaxQuantity[endpoint]; ok && outgoing >= limit {
		return errors.Newf(errors.CodeQuantityExceeded,
			"source node already holds %d of at most %d outgoing edges", outgoing, limit)
	}
	if limit, ok := p.IncomingMaxQuantity[endpoint]; ok && incoming >= limit {
		return errors.Newf(errors.CodeQuantityExceeded,
			"target node already holds %d of at most %d incoming edges", incoming, limit)
	}
	return nil
}

// passes applies the whitelist/blacklist pair to v. Absent lists are nil.
func passes[V comparable](whitelist, blacklist []V, v V) bool {
	if whitelist != nil && !slices.Contains(whitelist, v) {
		return false
	}
	return !slices.Contains(blacklist, v)
}
