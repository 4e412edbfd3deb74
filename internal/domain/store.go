package domain

// KV is the narrow keyed-store contract injected into the cache and
// progress layers. The store is best-effort: it survives restarts but is
// never the system of record, so callers decide per write whether a
// failure matters.
//
// Get reports a miss for absent keys; a stored record that later fails to
// parse is the caller's miss to handle.
type KV interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
