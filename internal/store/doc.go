// Package store defines the persistence interfaces consumed by the service
// layer, together with the shared error vocabulary implementations must map
// their backend errors onto. Concrete implementations live in
// internal/platform/postgres.
package store
