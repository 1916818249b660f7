package replay

import (
	"encoding/json"
	"sort"

	"lattice/internal/core/errors"
	"lattice/internal/engine/graph"
)

// EndpointDoc is the wire form of an endpoint triple:
// [edge type, source node type, target node type].
type EndpointDoc [3]Tag

func (e EndpointDoc) endpoint() graph.Endpoint[Tag, Tag] {
	return graph.Endpoint[Tag, Tag]{Edge: e[0], Source: e[1], Target: e[2]}
}

func docEndpoint(e graph.Endpoint[Tag, Tag]) EndpointDoc {
	return EndpointDoc{e.Edge, e.Source, e.Target}
}

// QuantityCap pairs an endpoint triple with its maximum, encoded as a
// two-element array.
type QuantityCap struct {
	Endpoint EndpointDoc
	Max      int
}

func (q QuantityCap) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{q.Endpoint, q.Max})
}

func (q *QuantityCap) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(err, errors.CodeMalformedEncoding, "quantity cap must be an [endpoint, max] pair")
	}
	if err := json.Unmarshal(pair[0], &q.Endpoint); err != nil {
		return errors.Wrap(err, errors.CodeMalformedEncoding, "invalid quantity cap endpoint")
	}
	if err := json.Unmarshal(pair[1], &q.Max); err != nil {
		return errors.Wrap(err, errors.CodeMalformedEncoding, "invalid quantity cap maximum")
	}
	return nil
}

// Document is the flat wire form of a schema configuration. A nil field
// leaves that rule unrestricted; an empty whitelist rejects everything.
// Fields marshal to null rather than being dropped so the nil/empty
// distinction survives a round trip.
type Document struct {
	NodeWhitelist []Tag `json:"node_whitelist"`
	NodeBlacklist []Tag `json:"node_blacklist"`
	EdgeWhitelist []Tag `json:"edge_whitelist"`
	EdgeBlacklist []Tag `json:"edge_blacklist"`

	EndpointWhitelist []EndpointDoc `json:"endpoint_whitelist"`
	EndpointBlacklist []EndpointDoc `json:"endpoint_blacklist"`

	EndpointMaxQuantity []QuantityCap `json:"edge_endpoint_max_quantity"`
	OutgoingMaxQuantity []QuantityCap `json:"endpoint_outgoing_max_quantity"`
	IncomingMaxQuantity []QuantityCap `json:"endpoint_incoming_max_quantity"`
}

// ParseDocument reads a schema configuration document.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedEncoding, "schema document must be a flat object")
	}
	return &doc, nil
}

// Policy builds the reference policy the document describes.
func (d *Document) Policy() *graph.Policy[Tag, Tag] {
	return &graph.Policy[Tag, Tag]{
		NodeWhitelist:       d.NodeWhitelist,
		NodeBlacklist:       d.NodeBlacklist,
		EdgeWhitelist:       d.EdgeWhitelist,
		EdgeBlacklist:       d.EdgeBlacklist,
		EndpointWhitelist:   endpoints(d.EndpointWhitelist),
		EndpointBlacklist:   endpoints(d.EndpointBlacklist),
		EndpointMaxQuantity: caps(d.EndpointMaxQuantity),
		OutgoingMaxQuantity: caps(d.OutgoingMaxQuantity),
		IncomingMaxQuantity: caps(d.IncomingMaxQuantity),
	}
}

// DocumentFromPolicy is the inverse of Policy. Cap entries come out sorted
// by endpoint so the document form is canonical.
func DocumentFromPolicy(p *graph.Policy[Tag, Tag]) *Document {
	return &Document{
		NodeWhitelist:       p.NodeWhitelist,
		NodeBlacklist:       p.NodeBlacklist,
		EdgeWhitelist:       p.EdgeWhitelist,
		EdgeBlacklist:       p.EdgeBlacklist,
		EndpointWhitelist:   docEndpoints(p.EndpointWhitelist),
		EndpointBlacklist:   docEndpoints(p.EndpointBlacklist),
		EndpointMaxQuantity: docCaps(p.EndpointMaxQuantity),
		OutgoingMaxQuantity: docCaps(p.OutgoingMaxQuantity),
		IncomingMaxQuantity: docCaps(p.IncomingMaxQuantity),
	}
}

func endpoints(docs []EndpointDoc) []graph.Endpoint[Tag, Tag] {
	if docs == nil {
		return nil
	}
	out := make([]graph.Endpoint[Tag, Tag], len(docs))
	for i, d := range docs {
		out[i] = d.endpoint()
	}
	return out
}

func docEndpoints(eps []graph.Endpoint[Tag, Tag]) []EndpointDoc {
	if eps == nil {
		return nil
	}
	out := make([]EndpointDoc, len(eps))
	for i, e := range eps {
		out[i] = docEndpoint(e)
	}
	return out
}

func caps(entries []QuantityCap) map[graph.Endpoint[Tag, Tag]]int {
	if entries == nil {
		return nil
	}
	out := make(map[graph.Endpoint[Tag, Tag]]int, len(entries))
	for _, entry := range entries {
		out[entry.Endpoint.endpoint()] = entry.Max
	}
	return out
}

func docCaps(m map[graph.Endpoint[Tag, Tag]]int) []QuantityCap {
	if m == nil {
		return nil
	}
	out := make([]QuantityCap, 0, len(m))
	for endpoint, max := range m {
		out = append(out, QuantityCap{Endpoint: docEndpoint(endpoint), Max: max})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Endpoint, out[j].Endpoint
		for k := range a {
			if a[k] != b[k] {
				return a[k].String() < b[k].String()
			}
		}
		return false
	})
	return out
}
