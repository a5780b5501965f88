package domain

import (
	"fmt"
	"strings"
)

// DeletePolicy decides what happens to connections when a device is deleted
type DeletePolicy string

const (
	// DeletePolicyOrphan leaves connections referencing the removed device
	DeletePolicyOrphan DeletePolicy = "orphan"
	// DeletePolicyCascade removes connections touching the device
	DeletePolicyCascade DeletePolicy = "cascade"
	// DeletePolicyRestrict refuses the delete while connections reference the device
	DeletePolicyRestrict DeletePolicy = "restrict"
)

// ParseDeletePolicy parses a policy name. Empty input yields DeletePolicyOrphan.
func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeletePolicyOrphan:
		return DeletePolicyOrphan, nil
	case DeletePolicyCascade:
		return DeletePolicyCascade, nil
	case DeletePolicyRestrict:
		return DeletePolicyRestrict, nil
	}
	return "", fmt.Errorf("unknown delete policy %q (want orphan, cascade or restrict)", s)
}

// DeleteResult reports the outcome of a device delete
type DeleteResult struct {
	DeviceID            int64        `json:"device_id"`
	Policy              DeletePolicy `json:"policy"`
	ConnectionsRemoved  int          `json:"connections_removed"`
	ConnectionsOrphaned int          `json:"connections_orphaned"`
}
