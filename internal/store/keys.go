package store

// Snapshot keys. These match the original web client's localStorage keys so
// that the on-disk payloads stay recognizable.
const (
	BooksKey       = "scriptorium_books"
	CollectionsKey = "scriptorium_collections"
)
