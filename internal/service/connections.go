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

// ConnectionRegistry manages directed connections between devices
type ConnectionRegistry struct {
	repo   repository.Repository
	logger *zap.Logger
	notifier
}

// NewConnectionRegistry creates a connection registry
func NewConnectionRegistry(deps Deps) *ConnectionRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionRegistry{
		repo:     deps.Repository,
		logger:   logger.Named("connections"),
		notifier: notifier{events: deps.Events, metrics: deps.Metrics},
	}
}

// Create links sourceID to destinationID. Both devices, and the connection
// type when given, must exist. Self-loops are allowed.
func (r *ConnectionRegistry) Create(ctx context.Context, sourceID, destinationID int64, connectionTypeID *int64) (_ *domain.Connection, err error) {
	ctx, span := startSpan(ctx, "ConnectionRegistry.Create",
		attribute.Int64("connection.source_id", sourceID),
		attribute.Int64("connection.destination_id", destinationID))
	defer func() { observability.EndSpan(span, err) }()

	conn := domain.NewConnection(sourceID, destinationID, connectionTypeID)
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	if err := r.repo.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}

	r.logger.Info("connection created",
		zap.Int64("id", conn.ID),
		zap.Int64("source_id", conn.SourceID),
		zap.Int64("destination_id", conn.DestinationID),
		zap.String("label", conn.Label()))

	r.publish(EventConnectionCreated, map[string]any{
		"connection_id":  conn.ID,
		"source_id":      conn.SourceID,
		"destination_id": conn.DestinationID,
	})
	return conn, nil
}

// List returns every connection with its connection type resolved
func (r *ConnectionRegistry) List(ctx context.Context) ([]domain.Connection, error) {
	return r.repo.ListConnections(ctx, repository.ConnectionFilter{})
}

// Get retrieves a connection by id
func (r *ConnectionRegistry) Get(ctx context.Context, id int64) (*domain.Connection, error) {
	conn, err := r.repo.GetConnection(ctx, id)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, apperr.NotFound("connection %d not found", id)
	}
	return conn, nil
}
