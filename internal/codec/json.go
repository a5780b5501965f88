package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"devicemap/internal/domain"
)

// JSONCodec handles JSON export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of the encoded output
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Export writes the inventory as indented JSON
func (c *JSONCodec) Export(inv *domain.Inventory, w io.Writer) error {
	if inv == nil {
		inv = domain.NewInventory()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(inv); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
