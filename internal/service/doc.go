// Package service implements the inventory registries for devicemap.
//
// The services sit between the HTTP handlers and the repository layer.
// They trim and validate input, apply the configured delete policy, push
// uploads through the asset store, and publish change events.
//
// # Services
//
// DeviceRegistry creates, lists and deletes devices. Deleting a device
// follows the configured domain.DeletePolicy.
//
// ConnectionTypeRegistry manages the catalog of connection type names.
//
// ConnectionRegistry links devices. Referenced devices and connection
// types are checked in the same transaction as the insert.
//
// GraphExporter projects a snapshot of the store into the node/edge
// payload consumed by vis-network.
//
// # Event System
//
// Registries publish events via EventBus; the SSE hub relays them to
// connected browsers.
package service
