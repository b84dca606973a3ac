package ledger

import "context"

// Namespace partitions the ledger by concern, one per entity type.
type Namespace string

const (
	NamespaceFiles              Namespace = "files"
	NamespaceTranscriptions     Namespace = "transcriptions"
	NamespaceDocumentation      Namespace = "documentation"
	NamespaceDocumentationIndex Namespace = "documentation_index"
	NamespaceStatus             Namespace = "status"
	NamespaceDownloads          Namespace = "downloads"
)

// Store is a namespaced key-value ledger with read-after-write visibility
// within the process. Locking is coarse-grained: every mutating operation on
// a namespace is serialized by one lock per namespace, not per key. Update
// holds that lock across the whole read-modify-write cycle, which is what
// makes concurrent status writes for the same key safe.
type Store interface {
	// Get unmarshals the value at key into out. The second return is false
	// when the key is absent.
	Get(ctx context.Context, ns Namespace, key string, out any) (bool, error)
	// Set marshals value and stores it at key, replacing any prior value.
	Set(ctx context.Context, ns Namespace, key string, value any) error
	// Update applies fn to the raw stored value (nil when absent) under the
	// namespace lock and persists the result. Returning a nil slice from fn
	// deletes the key.
	Update(ctx context.Context, ns Namespace, key string, fn func(raw []byte) ([]byte, error)) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, ns Namespace, key string) error
	// ListKeys returns all keys in the namespace in unspecified order.
	ListKeys(ctx context.Context, ns Namespace) ([]string, error)
	// Close releases the underlying medium.
	Close() error
}
