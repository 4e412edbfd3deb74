package domain

// ChangeBus event names. Views subscribe to these and re-read the store
// instead of polling; payloads are intentionally absent, a notification
// only says "your copy may be stale".
const (
	// EventProgressChanged fires after any progress, rating, or last-read
	// pointer write succeeds.
	EventProgressChanged = "progress-changed"

	// EventCatalogUpdated fires after an import, removal, or catalog
	// refresh so every open view re-fetches the listing.
	EventCatalogUpdated = "catalog-updated"
)
