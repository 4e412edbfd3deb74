package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrBookNotFound indicates the requested book does not exist in the catalog
	ErrBookNotFound = errors.New("book not found")

	// ErrBackendOffline indicates the library service is unreachable
	ErrBackendOffline = errors.New("library service is unreachable")

	// ErrDecodeFailed indicates bytes did not form a valid image or document
	ErrDecodeFailed = errors.New("payload could not be decoded")

	// ErrQuotaExceeded indicates the persistent store rejected a write for
	// capacity reasons; best-effort cache writes skip on this
	ErrQuotaExceeded = errors.New("persistent store capacity exceeded")
)
