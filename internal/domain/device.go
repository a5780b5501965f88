package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperr "devicemap/internal/errors"
)

// Column limits carried over from the original schema.
const (
	MaxDeviceNameLen = 100
	MaxDeviceTypeLen = 50
	MaxImageRefLen   = 100
)

// Device is a network entity in the inventory
type Device struct {
	ID         int64     `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	DeviceType string    `json:"device_type" yaml:"device_type"`
	ImageRef   string    `json:"image_ref,omitempty" yaml:"image_ref,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// NewDevice creates a device with trimmed fields. The id is assigned on insert.
func NewDevice(name, deviceType, imageRef string) *Device {
	return &Device{
		Name:       strings.TrimSpace(name),
		DeviceType: strings.TrimSpace(deviceType),
		ImageRef:   strings.TrimSpace(imageRef),
	}
}

// HasImage reports whether the device references a stored image
func (d *Device) HasImage() bool {
	return d.ImageRef != ""
}

// Validate checks required fields and column limits
func (d *Device) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation("device name required")
	}
	if utf8.RuneCountInString(d.Name) > MaxDeviceNameLen {
		return apperr.Validation("device name exceeds %d characters", MaxDeviceNameLen)
	}
	if strings.TrimSpace(d.DeviceType) == "" {
		return apperr.Validation("device type required")
	}
	if utf8.RuneCountInString(d.DeviceType) > MaxDeviceTypeLen {
		return apperr.Validation("device type exceeds %d characters", MaxDeviceTypeLen)
	}
	if len(d.ImageRef) > MaxImageRefLen {
		return apperr.Validation("image reference exceeds %d characters", MaxImageRefLen)
	}
	return nil
}
