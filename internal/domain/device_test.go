package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperr "devicemap/internal/errors"
)

func TestNewDeviceTrims(t *testing.T) {
	d := NewDevice("  Router1 ", "\trouter\n", " r1.png ")

	assert.Equal(t, "Router1", d.Name)
	assert.Equal(t, "router", d.DeviceType)
	assert.Equal(t, "r1.png", d.ImageRef)
	assert.True(t, d.HasImage())
}

func TestDeviceValidate(t *testing.T) {
	tests := []struct {
		name    string
		device  *Device
		wantErr bool
	}{
		{"valid", NewDevice("Router1", "router", ""), false},
		{"valid with image", NewDevice("Router1", "router", "r1.png"), false},
		{"empty name", NewDevice("", "router", ""), true},
		{"whitespace name", &Device{Name: "   ", DeviceType: "router"}, true},
		{"empty type", NewDevice("Router1", "", ""), true},
		{"name at limit", NewDevice(strings.Repeat("a", MaxDeviceNameLen), "router", ""), false},
		{"name over limit", NewDevice(strings.Repeat("a", MaxDeviceNameLen+1), "router", ""), true},
		{"type over limit", NewDevice("r", strings.Repeat("t", MaxDeviceTypeLen+1), ""), true},
		{"image ref over limit", NewDevice("r", "router", strings.Repeat("i", MaxImageRefLen+1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.device.Validate()
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.CodeValidation), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectionTypeValidate(t *testing.T) {
	assert.NoError(t, NewConnectionType("Ethernet").Validate())
	assert.True(t, apperr.Is(NewConnectionType("  ").Validate(), apperr.CodeValidation))
	assert.True(t, apperr.Is(NewConnectionType(strings.Repeat("x", MaxConnectionTypeNameLen+1)).Validate(), apperr.CodeValidation))
}
