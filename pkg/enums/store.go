package enums

import (
	"fmt"
	"strings"
)

// StoreStatus is the lifecycle state an administrator assigns to a store.
type StoreStatus string

const (
	StoreStatusActive    StoreStatus = "active"
	StoreStatusInactive  StoreStatus = "inactive"
	StoreStatusPending   StoreStatus = "pending"
	StoreStatusSuspended StoreStatus = "suspended"
)

// DefaultStoreStatus is applied when a store is created without a status.
const DefaultStoreStatus = StoreStatusActive

var validStoreStatuses = []StoreStatus{
	StoreStatusActive,
	StoreStatusInactive,
	StoreStatusPending,
	StoreStatusSuspended,
}

// String implements fmt.Stringer.
func (s StoreStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreStatus.
func (s StoreStatus) IsValid() bool {
	for _, candidate := range validStoreStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreStatus converts raw input into a StoreStatus. Matching ignores case
// and surrounding whitespace.
func ParseStoreStatus(value string) (StoreStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStoreStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store status %q", value)
}
