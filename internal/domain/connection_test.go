package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperr "devicemap/internal/errors"
)

func int64Ptr(v int64) *int64 { return &v }

func TestConnectionValidate(t *testing.T) {
	tests := []struct {
		name    string
		conn    *Connection
		wantErr bool
	}{
		{"valid without type", NewConnection(1, 2, nil), false},
		{"valid with type", NewConnection(1, 2, int64Ptr(3)), false},
		{"self loop allowed", NewConnection(1, 1, nil), false},
		{"missing source", NewConnection(0, 2, nil), true},
		{"missing destination", NewConnection(1, 0, nil), true},
		{"negative type id", NewConnection(1, 2, int64Ptr(-1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConnectionLabel(t *testing.T) {
	c := NewConnection(1, 2, nil)
	assert.Equal(t, "Undefined", c.Label())

	c.ConnectionType = &ConnectionType{ID: 4, Name: "Fiber"}
	assert.Equal(t, "Fiber", c.Label())
}

func TestParseDeletePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    DeletePolicy
		wantErr bool
	}{
		{"", DeletePolicyOrphan, false},
		{"orphan", DeletePolicyOrphan, false},
		{"CASCADE", DeletePolicyCascade, false},
		{" restrict ", DeletePolicyRestrict, false},
		{"nuke", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDeletePolicy(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
