package vitalsync

import "context"

// RangeQuery selects documents in a collection by an inclusive range on a
// single field. Field values are compared as strings; ISO dates make this a
// correct chronological range.
type RangeQuery struct {
	Field      string
	Start      string
	End        string
	OrderBy    string
	Descending bool
	Limit      int
}

// RemoteStore is the contract this library consumes from the remote
// document store. Paths are hierarchical ("users/{id}/vitals/{date}").
//
// SetMerge is an upsert: fields merge into an existing document rather than
// replacing it, and the last write wins. There is no version or etag field;
// concurrent writers for the same document key race benignly (the stored
// summary reflects whichever write lands last).
//
// Implementations must be safe for concurrent use. Documents are encoded
// and decoded through a single JSON boundary; unknown fields are rejected
// on decode.
type RemoteStore interface {
	// Get fetches one document into out. Returns ErrNotFound when absent.
	Get(ctx context.Context, path string, out any) error

	// SetMerge upserts fields into the document at path.
	SetMerge(ctx context.Context, path string, fields any) error

	// Add appends a document with a generated ID to a collection.
	Add(ctx context.Context, collection string, fields any) (string, error)

	// Query fetches the documents of a collection matching q into out,
	// which must be a pointer to a slice. A missing collection yields an
	// empty result, not an error.
	Query(ctx context.Context, collection string, q RangeQuery, out any) error
}

// Document paths used by the sync engine.

func userPath(userID string) string {
	return "users/" + userID
}

func vitalsPath(userID, date string) string {
	return "users/" + userID + "/vitals/" + date
}

func vitalsCollection(userID string) string {
	return "users/" + userID + "/vitals"
}

func activityPath(userID, date string) string {
	return "users/" + userID + "/activities/" + date
}

func activityCollection(userID string) string {
	return "users/" + userID + "/activities"
}
