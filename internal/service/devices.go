package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"devicemap/internal/asset"
	"devicemap/internal/domain"
	apperr "devicemap/internal/errors"
	"devicemap/internal/observability"
	"devicemap/internal/repository"
)

// DeviceRegistry manages devices and their image references
type DeviceRegistry struct {
	repo   repository.Repository
	assets AssetStore
	policy domain.DeletePolicy
	logger *zap.Logger
	notifier
}

// NewDeviceRegistry creates a device registry
func NewDeviceRegistry(deps Deps) *DeviceRegistry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := deps.DeletePolicy
	if policy == "" {
		policy = domain.DeletePolicyOrphan
	}
	return &DeviceRegistry{
		repo:     deps.Repository,
		assets:   deps.Assets,
		policy:   policy,
		logger:   logger.Named("devices"),
		notifier: notifier{events: deps.Events, metrics: deps.Metrics},
	}
}

// Policy returns the delete policy in force
func (r *DeviceRegistry) Policy() domain.DeletePolicy {
	return r.policy
}

// Create stores a device. imageRef, if set, must name a stored asset.
func (r *DeviceRegistry) Create(ctx context.Context, name, deviceType, imageRef string) (_ *domain.Device, err error) {
	ctx, span := startSpan(ctx, "DeviceRegistry.Create", attribute.String("device.name", name))
	defer func() { observability.EndSpan(span, err) }()

	device := domain.NewDevice(name, deviceType, imageRef)
	if err := device.Validate(); err != nil {
		return nil, err
	}
	if device.HasImage() {
		if !asset.IsSanitized(device.ImageRef) {
			return nil, apperr.Validation("image reference %q is not a sanitized filename", device.ImageRef)
		}
		if r.assets == nil || !r.assets.Exists(device.ImageRef) {
			return nil, apperr.Validation("image %q has not been uploaded", device.ImageRef)
		}
	}

	return r.insert(ctx, device)
}

// CreateWithImage validates the device fields, stores the upload and then
// creates the device referencing it. A nil upload creates a device without
// an image. If the insert fails the stored image is removed unless another
// device already references it.
func (r *DeviceRegistry) CreateWithImage(ctx context.Context, name, deviceType string, up *asset.Upload) (_ *domain.Device, err error) {
	ctx, span := startSpan(ctx, "DeviceRegistry.CreateWithImage", attribute.String("device.name", name))
	defer func() { observability.EndSpan(span, err) }()

	device := domain.NewDevice(name, deviceType, "")
	if err := device.Validate(); err != nil {
		return nil, err
	}

	if up != nil {
		if r.assets == nil {
			return nil, apperr.New(apperr.CodeInternal, "no asset store configured")
		}
		ref, err := r.assets.Accept(up)
		if err != nil {
			return nil, err
		}
		device.ImageRef = ref
	}

	created, err := r.insert(ctx, device)
	if err != nil {
		if device.HasImage() {
			r.discardImage(context.WithoutCancel(ctx), device.ImageRef)
		}
		return nil, err
	}
	return created, nil
}

// discardImage removes an image no device references
func (r *DeviceRegistry) discardImage(ctx context.Context, ref string) {
	n, err := r.repo.CountDevicesWithImage(ctx, ref)
	if err != nil {
		r.logger.Warn("keeping image, reference check failed", zap.String("ref", ref), zap.Error(err))
		return
	}
	if n > 0 {
		return
	}
	if err := r.assets.Remove(ref); err != nil {
		r.logger.Warn("failed to remove unreferenced image", zap.String("ref", ref), zap.Error(err))
	}
}

func (r *DeviceRegistry) insert(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	if err := r.repo.CreateDevice(ctx, device); err != nil {
		return nil, err
	}

	r.logger.Info("device created",
		zap.Int64("id", device.ID),
		zap.String("name", device.Name),
		zap.String("device_type", device.DeviceType),
		zap.String("image_ref", device.ImageRef))

	r.publish(EventDeviceCreated, map[string]any{"device_id": device.ID, "name": device.Name})
	return device, nil
}

// List returns every device in insertion order
func (r *DeviceRegistry) List(ctx context.Context) ([]domain.Device, error) {
	return r.repo.ListDevices(ctx)
}

// Get retrieves a device by id
func (r *DeviceRegistry) Get(ctx context.Context, id int64) (*domain.Device, error) {
	device, err := r.repo.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, apperr.NotFound("device %d not found", id)
	}
	return device, nil
}

// Delete removes a device according to the configured delete policy
func (r *DeviceRegistry) Delete(ctx context.Context, id int64) (_ *domain.DeleteResult, err error) {
	ctx, span := startSpan(ctx, "DeviceRegistry.Delete",
		attribute.Int64("device.id", id),
		attribute.String("device.delete_policy", string(r.policy)))
	defer func() { observability.EndSpan(span, err) }()

	result, err := r.repo.DeleteDevice(ctx, id, r.policy)
	if err != nil {
		return nil, err
	}

	r.logger.Info("device deleted",
		zap.Int64("id", id),
		zap.String("policy", string(result.Policy)),
		zap.Int("connections_removed", result.ConnectionsRemoved),
		zap.Int("connections_orphaned", result.ConnectionsOrphaned))
	if result.ConnectionsOrphaned > 0 {
		r.logger.Warn("connections left dangling", zap.Int64("device_id", id), zap.Int("count", result.ConnectionsOrphaned))
	}

	r.publish(EventDeviceDeleted, result)
	return result, nil
}

// Connections returns the connections where the device is source or destination
func (r *DeviceRegistry) Connections(ctx context.Context, id int64) ([]domain.Connection, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}
	return r.repo.ListConnections(ctx, repository.ConnectionFilter{DeviceID: id})
}
