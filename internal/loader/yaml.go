// Package loader reads inventory seed files and applies them through the
// registries.
//
// A seed names things instead of numbering them:
//
//	connection_types: [Ethernet, Fiber]
//	devices:
//	  - name: Router1
//	    device_type: router
//	  - name: Switch1
//	    device_type: switch
//	    image: switch.png
//	connections:
//	  - from: Router1
//	    to: Switch1
//	    type: Ethernet
//
// Applying a seed is additive. Connection types and devices that already
// exist under the same name are reused; connections are always created.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"devicemap/internal/domain"
	apperr "devicemap/internal/errors"
	"devicemap/internal/service"
)

// SeedYAML represents the YAML file structure
type SeedYAML struct {
	ConnectionTypes []string         `yaml:"connection_types,omitempty"`
	Devices         []DeviceYAML     `yaml:"devices,omitempty"`
	Connections     []ConnectionYAML `yaml:"connections,omitempty"`
}

// DeviceYAML represents a device in YAML format
type DeviceYAML struct {
	Name       string `yaml:"name"`
	DeviceType string `yaml:"device_type"`
	Image      string `yaml:"image,omitempty"`
}

// ConnectionYAML represents a connection in YAML format
type ConnectionYAML struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Type string `yaml:"type,omitempty"`
}

// Result counts what Apply did
type Result struct {
	ConnectionTypesCreated int `json:"connection_types_created"`
	ConnectionTypesReused  int `json:"connection_types_reused"`
	DevicesCreated         int `json:"devices_created"`
	DevicesReused          int `json:"devices_reused"`
	ConnectionsCreated     int `json:"connections_created"`
}

// LoadFile reads and parses a seed file
func LoadFile(path string) (*SeedYAML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document and checks it is self-consistent
func Parse(r io.Reader) (*SeedYAML, error) {
	var seed SeedYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && err != io.EOF {
		return nil, apperr.Validation("failed to parse YAML: %v", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks for duplicate device names and blank references. It does
// not consult the store.
func (s *SeedYAML) Validate() error {
	seen := make(map[string]struct{}, len(s.Devices))
	for i, d := range s.Devices {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return apperr.Validation("devices[%d]: name required", i)
		}
		if _, dup := seen[name]; dup {
			return apperr.Validation("devices[%d]: duplicate device name %q", i, name)
		}
		seen[name] = struct{}{}
	}
	for i, c := range s.Connections {
		if strings.TrimSpace(c.From) == "" || strings.TrimSpace(c.To) == "" {
			return apperr.Validation("connections[%d]: from and to are required", i)
		}
	}
	return nil
}

// Apply creates the seed's entities through the registries. A seed that
// names an ambiguous stored device is refused before anything is written.
// Otherwise it stops at the first error; entities created before it remain.
func Apply(ctx context.Context, svc *service.Services, seed *SeedYAML) (*Result, error) {
	result := &Result{}

	devices, err := svc.Devices.List(ctx)
	if err != nil {
		return nil, err
	}
	deviceIDs := uniqueDeviceNames(devices)
	if err := checkAmbiguous(deviceIDs, seed); err != nil {
		return result, err
	}

	types, err := svc.ConnectionTypes.List(ctx)
	if err != nil {
		return nil, err
	}
	typeIDs := make(map[string]int64, len(types))
	for _, ct := range types {
		typeIDs[ct.Name] = ct.ID
	}

	// reused counts each stored type once
	reused := make(map[string]struct{})
	ensureType := func(name string) (int64, error) {
		name = strings.TrimSpace(name)
		if id, ok := typeIDs[name]; ok {
			if _, counted := reused[name]; !counted {
				reused[name] = struct{}{}
				result.ConnectionTypesReused++
			}
			return id, nil
		}
		ct, err := svc.ConnectionTypes.Create(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("connection type %q: %w", name, err)
		}
		typeIDs[ct.Name] = ct.ID
		// created in this run, never counted as reused
		reused[ct.Name] = struct{}{}
		result.ConnectionTypesCreated++
		return ct.ID, nil
	}

	for _, name := range seed.ConnectionTypes {
		if _, err := ensureType(name); err != nil {
			return result, err
		}
	}

	for _, d := range seed.Devices {
		name := strings.TrimSpace(d.Name)
		if _, ok := deviceIDs[name]; ok {
			result.DevicesReused++
			continue
		}
		created, err := svc.Devices.Create(ctx, name, d.DeviceType, d.Image)
		if err != nil {
			return result, fmt.Errorf("device %q: %w", name, err)
		}
		deviceIDs[created.Name] = created.ID
		result.DevicesCreated++
	}

	for i, c := range seed.Connections {
		from, err := lookupDevice(deviceIDs, c.From)
		if err != nil {
			return result, fmt.Errorf("connections[%d]: %w", i, err)
		}
		to, err := lookupDevice(deviceIDs, c.To)
		if err != nil {
			return result, fmt.Errorf("connections[%d]: %w", i, err)
		}

		var typeID *int64
		if strings.TrimSpace(c.Type) != "" {
			id, err := ensureType(c.Type)
			if err != nil {
				return result, err
			}
			typeID = &id
		}

		if _, err := svc.Connections.Create(ctx, from, to, typeID); err != nil {
			return result, fmt.Errorf("connections[%d]: %w", i, err)
		}
		result.ConnectionsCreated++
	}

	return result, nil
}

// checkAmbiguous refuses seeds that name a device shared by several stored
// devices, whether as a device entry or a connection end
func checkAmbiguous(ids map[string]int64, seed *SeedYAML) error {
	for i, d := range seed.Devices {
		name := strings.TrimSpace(d.Name)
		if id, ok := ids[name]; ok && id == 0 {
			return apperr.Conflict("devices[%d]: device name %q is ambiguous", i, name)
		}
	}
	for i, c := range seed.Connections {
		for _, end := range []string{c.From, c.To} {
			name := strings.TrimSpace(end)
			if id, ok := ids[name]; ok && id == 0 {
				return apperr.Conflict("connections[%d]: device name %q is ambiguous", i, name)
			}
		}
	}
	return nil
}

// uniqueDeviceNames maps names to ids. Names shared by several stored
// devices map to 0 and cannot be referenced.
func uniqueDeviceNames(devices []domain.Device) map[string]int64 {
	ids := make(map[string]int64, len(devices))
	for _, d := range devices {
		if _, dup := ids[d.Name]; dup {
			ids[d.Name] = 0
			continue
		}
		ids[d.Name] = d.ID
	}
	return ids
}

func lookupDevice(ids map[string]int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	id, ok := ids[name]
	if !ok {
		return 0, apperr.NotFound("device %q not found", name)
	}
	if id == 0 {
		return 0, apperr.Conflict("device name %q is ambiguous", name)
	}
	return id, nil
}
