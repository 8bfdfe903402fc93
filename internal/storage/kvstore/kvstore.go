// Package kvstore implements the domain repositories (session, cart, order
// history) over the kv.Store boundary. Each repository owns one or two fixed
// keys and a strict JSON codec: persisted blobs that fail to decode or
// violate record invariants are treated as absent, so callers fall back to
// their empty defaults instead of trusting corrupt state.
package kvstore

// Persisted keys. These are the durable-state contract; all components
// honor them.
const (
	KeyAuthToken = "auth-token"
	KeyUserData  = "user-data"
	KeyCart      = "cart"
	KeyOrders    = "orders"
)
