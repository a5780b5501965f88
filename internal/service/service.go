package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"devicemap/internal/asset"
	"devicemap/internal/domain"
	"devicemap/internal/observability"
	"devicemap/internal/repository"
)

// AssetStore is the part of the asset store the registries depend on
type AssetStore interface {
	Accept(up *asset.Upload) (string, error)
	Exists(ref string) bool
	Remove(ref string) error
	URL(ref string) string
}

// Deps wires the registries. Repository and Assets are required; the rest
// may be left zero.
type Deps struct {
	Repository   repository.Repository
	Assets       AssetStore
	Events       *EventBus
	Metrics      *observability.Collector
	Logger       *zap.Logger
	DeletePolicy domain.DeletePolicy
}

// Services groups the registries and the graph exporter
type Services struct {
	Devices         *DeviceRegistry
	ConnectionTypes *ConnectionTypeRegistry
	Connections     *ConnectionRegistry
	Graph           *GraphExporter
}

// New builds every service from one set of dependencies
func New(deps Deps) *Services {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Events == nil {
		deps.Events = NewEventBus()
	}
	if deps.DeletePolicy == "" {
		deps.DeletePolicy = domain.DeletePolicyOrphan
	}

	return &Services{
		Devices:         NewDeviceRegistry(deps),
		ConnectionTypes: NewConnectionTypeRegistry(deps),
		Connections:     NewConnectionRegistry(deps),
		Graph:           NewGraphExporter(deps),
	}
}

// notifier publishes events and counts them
type notifier struct {
	events  *EventBus
	metrics *observability.Collector
}

func (n notifier) publish(eventType EventType, payload any) {
	n.events.Publish(Event{Type: eventType, Payload: payload})
	n.metrics.RecordEvent(string(eventType))
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return observability.StartSpan(ctx, name, attrs...)
}
