package domain

import (
	"time"

	apperr "devicemap/internal/errors"
)

// UndefinedConnectionLabel is the edge label used when a connection has no
// resolvable connection type
const UndefinedConnectionLabel = "Undefined"

// Connection is a directed link from a source device to a destination device
type Connection struct {
	ID               int64           `json:"id" yaml:"id"`
	SourceID         int64           `json:"source_id" yaml:"source_id"`
	DestinationID    int64           `json:"destination_id" yaml:"destination_id"`
	ConnectionTypeID *int64          `json:"connection_type_id" yaml:"connection_type_id,omitempty"`
	ConnectionType   *ConnectionType `json:"connection_type,omitempty" yaml:"-"`
	CreatedAt        time.Time       `json:"created_at" yaml:"created_at"`
}

// NewConnection creates a connection. typeID may be nil.
func NewConnection(sourceID, destinationID int64, typeID *int64) *Connection {
	return &Connection{
		SourceID:         sourceID,
		DestinationID:    destinationID,
		ConnectionTypeID: typeID,
	}
}

// Validate checks that both endpoints are set. Existence of the referenced
// devices is checked by the repository inside the insert transaction.
func (c *Connection) Validate() error {
	if c.SourceID <= 0 {
		return apperr.Validation("source device id required")
	}
	if c.DestinationID <= 0 {
		return apperr.Validation("destination device id required")
	}
	if c.ConnectionTypeID != nil && *c.ConnectionTypeID <= 0 {
		return apperr.Validation("invalid connection type id %d", *c.ConnectionTypeID)
	}
	return nil
}

// Label returns the resolved connection type name, or "Undefined"
func (c *Connection) Label() string {
	if c.ConnectionType != nil && c.ConnectionType.Name != "" {
		return c.ConnectionType.Name
	}
	return UndefinedConnectionLabel
}
