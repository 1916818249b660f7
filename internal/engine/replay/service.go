package replay

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"lattice/internal/core/errors"
	"lattice/internal/shared/observability"
)

// Service replays action batches against schema-governed stores. It is
// stateless; every call builds a fresh graph from the document.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Replay parses the schema document and the action batch, applies every
// action in order against an empty store, and returns the canonical
// snapshot of the final state. The first failing action aborts the batch;
// the error carries the action's index and tag.
func (s *Service) Replay(ctx context.Context, schemaDoc, batch []byte) ([]byte, error) {
	ctx, span := observability.Tracer.Start(ctx, "replayService.Replay", trace.WithAttributes())
	defer span.End()

	start := time.Now()

	doc, err := ParseDocument(schemaDoc)
	if err != nil {
		return nil, err
	}
	actions, err := Actions.DecodeBatch(batch)
	if err != nil {
		return nil, err
	}

	g := NewGraph(doc.Policy())

	for i, act := range actions {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "replay canceled")
		}
		if err := Apply(g, act); err != nil {
			observability.MutationsTotal.WithLabelValues(actionTag(act), "error").Inc()
			return nil, errors.AddContext(
				errors.AddContext(err, errors.CtxAction, i),
				errors.CtxTag, actionTag(act))
		}
		observability.MutationsTotal.WithLabelValues(actionTag(act), "ok").Inc()
	}

	snapshot, err := Codec().Encode(g)
	if err != nil {
		return nil, err
	}

	observability.GraphNodes.Set(float64(g.NodeCount()))
	observability.GraphEdges.Set(float64(g.EdgeCount()))
	observability.ReplayDuration.Observe(time.Since(start).Seconds())
	observability.SnapshotBytes.Observe(float64(len(snapshot)))

	slog.Info("batch replayed",
		"actions", len(actions),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", time.Since(start))

	return snapshot, nil
}

// Apply performs one action against the store.
func Apply(g *Graph, act Action) error {
	switch a := act.(type) {
	case AddNode:
		_, err := g.AddNode(newWeight(a.ID, a.Ty))
		return err
	case AddEdge:
		_, err := g.AddEdge(a.Source, a.Target, newWeight(a.ID, a.Ty))
		return err
	case RemoveNode:
		_, err := g.RemoveNode(a.ID)
		return err
	case RemoveEdge:
		_, err := g.RemoveEdge(a.ID)
		return err
	}
	return errors.New(errors.CodeInternal, "unhandled action variant")
}

// Run is the plain boundary function: schema document plus action batch in,
// snapshot out.
func Run(schemaDoc, batch []byte) ([]byte, error) {
	return NewService().Replay(context.Background(), schemaDoc, batch)
}
