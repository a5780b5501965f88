// Package repository defines the data access interfaces for devicemap.
//
// Registries depend on these interfaces, never on a storage engine. The
// sqlite subpackage is the only implementation.
//
// # Conventions
//
// Get methods return (nil, nil) when the id does not exist; callers decide
// whether that is an error.
//
// Writes that depend on other rows (a connection's endpoints and type, a
// device delete under a policy) check those rows inside the same
// transaction and return coded errors from devicemap/internal/errors:
// NOT_FOUND for a missing referenced row, CONFLICT for a uniqueness or
// restrict-policy violation.
//
// # Identity
//
// Ids are assigned by the store and never reused, so a connection left
// pointing at a deleted device cannot silently start pointing at a new one.
package repository
