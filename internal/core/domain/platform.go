package domain

import "fmt"

// PlatformID identifies one of the three provisioning targets.
type PlatformID string

const (
	// PlatformRecordStore is the authoritative tabular project record store.
	PlatformRecordStore PlatformID = "record-store"
	// PlatformTaskBoard is the external work-tracking platform.
	PlatformTaskBoard PlatformID = "task-board"
	// PlatformDocStore is the external document hosting platform.
	PlatformDocStore PlatformID = "doc-store"
)

// ProvisionOrder is the fixed processing order for provisioning runs.
// The record store goes first because the task-board and doc-store
// resource URLs are written back onto the record-store entry.
var ProvisionOrder = []PlatformID{
	PlatformRecordStore,
	PlatformTaskBoard,
	PlatformDocStore,
}

// AllPlatforms returns every platform in provisioning order.
func AllPlatforms() []PlatformID {
	result := make([]PlatformID, len(ProvisionOrder))
	copy(result, ProvisionOrder)
	return result
}

// ParsePlatformID converts a string to a PlatformID.
func ParsePlatformID(s string) (PlatformID, error) {
	switch PlatformID(s) {
	case PlatformRecordStore, PlatformTaskBoard, PlatformDocStore:
		return PlatformID(s), nil
	default:
		return "", fmt.Errorf("%w: unknown platform %q", ErrInvalidInput, s)
	}
}

// String returns the platform identifier.
func (p PlatformID) String() string {
	return string(p)
}

// DisplayName returns the human-readable platform name.
func (p PlatformID) DisplayName() string {
	switch p {
	case PlatformRecordStore:
		return "Record Store"
	case PlatformTaskBoard:
		return "Task Board"
	case PlatformDocStore:
		return "Document Store"
	default:
		return string(p)
	}
}
