// Package graph implements a schema-constrained store of typed nodes and
// typed edges. Payload and schema types are supplied by the caller through
// small capability interfaces; the store itself never inspects payloads
// beyond id and type.
//
// The store is not safe for concurrent mutation. Callers sharing a graph
// across goroutines must serialize access themselves.
package graph

import (
	goerrors "errors"

	"github.com/google/uuid"

	"lattice/internal/core/errors"
)

// Weighted is the capability every node or edge payload exposes to the
// store: identifier access and a type tag. The stored id is kept consistent
// with the payload's own id at all times.
type Weighted[K comparable, T comparable] interface {
	GetID() K
	SetID(K)
	GetType() T
}

// Schema decides whether a structural mutation is allowed. It is consulted
// before every add; removals are never vetoed. A nil error means the
// mutation is accepted.
//
// AllowEdge receives the number of live edges already matching the
// (edge, source type, target type) triple across the whole graph.
type Schema[NT comparable, ET comparable] interface {
	Name() string
	AllowNode(ty NT) error
	AllowEdge(quantity int, edge ET, source, target NT) error
}

// DirectionalSchema is an optional extension for schemas that bound edge
// quantities per node rather than per graph. When implemented, the store
// additionally reports the matching edges leaving the concrete source node
// and entering the concrete target node.
type DirectionalSchema[NT comparable, ET comparable] interface {
	AllowEdgeDirected(outgoing, incoming int, edge ET, source, target NT) error
}

// Allocator returns a fresh identifier for which inUse reports false. The
// store calls it when an add collides with an existing id.
type Allocator[K comparable] func(inUse func(K) bool) K

// Integer covers the built-in integer kinds usable as sequential keys.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// IntAllocator scans upward from zero and hands out the first unused key.
// Scanning keeps reallocation deterministic for a given store state.
func IntAllocator[K Integer]() Allocator[K] {
	return func(inUse func(K) bool) K {
		var k K
		for inUse(k) {
			k++
		}
		return k
	}
}

// UUIDAllocator hands out random UUID strings for string-like keys.
func UUIDAllocator[K ~string]() Allocator[K] {
	return func(inUse func(K) bool) K {
		for {
			k := K(uuid.NewString())
			if !inUse(k) {
				return k
			}
		}
	}
}

// EdgeRef is an edge together with the node ids it connects.
type EdgeRef[NK comparable, E any] struct {
	Source NK
	Target NK
	Weight E
}

// schemaReject keeps coded rejections intact and stamps the fallback code
// onto schema errors that carry none.
func schemaReject(err error, fallback errors.ErrorCode) error {
	var de *errors.DomainError
	if goerrors.As(err, &de) {
		return err
	}
	return errors.Wrap(err, fallback, "schema rejected mutation")
}
