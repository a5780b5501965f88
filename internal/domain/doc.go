// Package domain defines the core types for the devicemap inventory.
//
// # Core Types
//
// Device is a recorded network entity with a name, a free-form type label
// and an optional image asset reference.
//
// ConnectionType is a named category of link (for example "Ethernet").
// Names are unique and compared case-sensitively.
//
// Connection is a directed link between two devices, optionally tagged
// with a ConnectionType. Source and destination are distinct roles even
// when both point at the same device.
//
// Graph is the node/edge projection consumed by the vis-network front end.
// BuildGraph derives it from devices and connections without touching
// storage.
//
// # Delete Policy
//
// DeletePolicy decides what happens to connections when a device is
// removed. The default, orphan, leaves them pointing at the missing id.
//
// # Design Principles
//
// - No database or external dependencies
// - Validation lives next to the type it validates
// - Errors are coded via devicemap/internal/errors
package domain
