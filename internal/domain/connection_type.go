package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	apperr "devicemap/internal/errors"
)

// MaxConnectionTypeNameLen is the longest accepted connection type name
const MaxConnectionTypeNameLen = 100

// ConnectionType is a named category of link, unique by exact name
type ConnectionType struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewConnectionType creates a connection type with a trimmed name
func NewConnectionType(name string) *ConnectionType {
	return &ConnectionType{Name: strings.TrimSpace(name)}
}

// Validate checks the name is present and within limits
func (ct *ConnectionType) Validate() error {
	if strings.TrimSpace(ct.Name) == "" {
		return apperr.Validation("connection type name required")
	}
	if utf8.RuneCountInString(ct.Name) > MaxConnectionTypeNameLen {
		return apperr.Validation("connection type name exceeds %d characters", MaxConnectionTypeNameLen)
	}
	return nil
}
