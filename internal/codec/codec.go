// Package codec writes inventory snapshots in downloadable formats.
package codec

import (
	"fmt"
	"io"
	"strings"

	"devicemap/internal/domain"
)

// Exporter writes an inventory snapshot in one format
type Exporter interface {
	Export(inv *domain.Inventory, w io.Writer) error
	Format() string
	ContentType() string
}

// Formats lists the supported export format identifiers
var Formats = []string{"json", "yaml"}

// ForFormat returns the exporter for a format identifier ("yml" is accepted
// for yaml)
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q (want %s)", format, strings.Join(Formats, " or "))
}
