package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"devicemap/internal/domain"
	apperr "devicemap/internal/errors"
	"devicemap/internal/observability"
	"devicemap/internal/repository"
)

// ConnectionTypeRegistry manages the catalog of connection types
type ConnectionTypeRegistry struct {
	repo   repository.Repository
	logger *zap.Logger
	notifier
}

// NewConnectionTypeRegistry creates a connection type registry
func NewConnectionTypeRegistry(deps Deps) *ConnectionTypeRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionTypeRegistry{
		repo:     deps.Repository,
		logger:   logger.Named("connection_types"),
		notifier: notifier{events: deps.Events, metrics: deps.Metrics},
	}
}

// Create adds a connection type. Names are unique by exact match.
func (r *ConnectionTypeRegistry) Create(ctx context.Context, name string) (_ *domain.ConnectionType, err error) {
	ctx, span := startSpan(ctx, "ConnectionTypeRegistry.Create", attribute.String("connection_type.name", name))
	defer func() { observability.EndSpan(span, err) }()

	ct := domain.NewConnectionType(name)
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	if err := r.repo.CreateConnectionType(ctx, ct); err != nil {
		return nil, err
	}

	r.logger.Info("connection type created", zap.Int64("id", ct.ID), zap.String("name", ct.Name))
	r.publish(EventConnectionTypeCreated, map[string]any{"connection_type_id": ct.ID, "name": ct.Name})
	return ct, nil
}

// List returns every connection type in insertion order
func (r *ConnectionTypeRegistry) List(ctx context.Context) ([]domain.ConnectionType, error) {
	return r.repo.ListConnectionTypes(ctx)
}

// Get retrieves a connection type by id
func (r *ConnectionTypeRegistry) Get(ctx context.Context, id int64) (*domain.ConnectionType, error) {
	ct, err := r.repo.GetConnectionType(ctx, id)
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return nil, apperr.NotFound("connection type %d not found", id)
	}
	return ct, nil
}
