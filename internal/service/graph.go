package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"devicemap/internal/domain"
	"devicemap/internal/observability"
	"devicemap/internal/repository"
)

// GraphExporter builds the visualization payload and inventory snapshots.
// It never writes.
type GraphExporter struct {
	repo    repository.Repository
	assets  AssetStore
	metrics *observability.Collector
	logger  *zap.Logger
}

// NewGraphExporter creates a graph exporter
func NewGraphExporter(deps Deps) *GraphExporter {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphExporter{
		repo:    deps.Repository,
		assets:  deps.Assets,
		metrics: deps.Metrics,
		logger:  logger.Named("graph"),
	}
}

// Export computes the graph from a fresh snapshot
func (g *GraphExporter) Export(ctx context.Context) (_ *domain.Graph, err error) {
	ctx, span := startSpan(ctx, "GraphExporter.Export")
	defer func() { observability.EndSpan(span, err) }()

	inv, err := g.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var resolve domain.ImageResolver
	if g.assets != nil {
		resolve = g.assets.URL
	}
	graph := domain.BuildGraph(inv.Devices, inv.Connections, resolve)
	g.metrics.ObserveGraph(graph)

	span.SetAttributes(
		attribute.Int("graph.nodes", len(graph.Nodes)),
		attribute.Int("graph.edges", len(graph.Edges)))
	g.logger.Debug("graph exported", zap.Int("nodes", len(graph.Nodes)), zap.Int("edges", len(graph.Edges)))
	return graph, nil
}

// Snapshot returns every device, connection type and connection as read in
// one transaction
func (g *GraphExporter) Snapshot(ctx context.Context) (*domain.Inventory, error) {
	inv, err := g.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	g.metrics.ObserveInventory(inv)
	return inv, nil
}
