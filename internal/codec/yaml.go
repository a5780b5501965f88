package codec

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"devicemap/internal/domain"
)

// YAMLCodec handles YAML export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of the encoded output
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlInventory is the document layout. Connections carry the type name
// inline so the file reads without cross-referencing ids.
type yamlInventory struct {
	TakenAt         time.Time               `yaml:"taken_at"`
	Devices         []domain.Device         `yaml:"devices"`
	ConnectionTypes []domain.ConnectionType `yaml:"connection_types"`
	Connections     []yamlConnection        `yaml:"connections"`
}

type yamlConnection struct {
	ID               int64     `yaml:"id"`
	SourceID         int64     `yaml:"source_id"`
	DestinationID    int64     `yaml:"destination_id"`
	ConnectionTypeID *int64    `yaml:"connection_type_id,omitempty"`
	Label            string    `yaml:"label"`
	CreatedAt        time.Time `yaml:"created_at"`
}

// Export writes the inventory as a YAML document
func (c *YAMLCodec) Export(inv *domain.Inventory, w io.Writer) error {
	if inv == nil {
		inv = domain.NewInventory()
	}

	doc := yamlInventory{
		TakenAt:         inv.TakenAt,
		Devices:         inv.Devices,
		ConnectionTypes: inv.ConnectionTypes,
		Connections:     make([]yamlConnection, 0, len(inv.Connections)),
	}
	for i := range inv.Connections {
		conn := &inv.Connections[i]
		doc.Connections = append(doc.Connections, yamlConnection{
			ID:               conn.ID,
			SourceID:         conn.SourceID,
			DestinationID:    conn.DestinationID,
			ConnectionTypeID: conn.ConnectionTypeID,
			Label:            conn.Label(),
			CreatedAt:        conn.CreatedAt,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}

	return nil
}
