package store

import "context"

// Filter restricts a subscription to documents whose field matches
// the given value. Op uses the backend's comparison operators ("==",
// "<", ">=", ...).
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Query describes which documents of a collection a subscription
// should deliver and in what order.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// DocumentStore is the contract this service needs from the vendor
// document database: push-based reads of whole collections plus plain
// key-value writes. Paths are slash-separated collection paths
// ("users/{uid}/expenses").
type DocumentStore interface {
	// Subscribe establishes a live listener on the collection. The
	// returned subscription receives a full snapshot on every change.
	Subscribe(ctx context.Context, path string, q Query) (*Subscription, error)

	// Add creates a document with a generated id and returns the id.
	Add(ctx context.Context, path string, data map[string]interface{}) (string, error)

	// Update merges the given fields into an existing document.
	Update(ctx context.Context, path, id string, data map[string]interface{}) error

	// Set writes a document at a known id, replacing any prior
	// content.
	Set(ctx context.Context, path, id string, data map[string]interface{}) error

	// Delete removes a document permanently.
	Delete(ctx context.Context, path, id string) error

	// GetAll fetches every document in the collection once, without
	// filtering.
	GetAll(ctx context.Context, path string) ([]Document, error)
}
