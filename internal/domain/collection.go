package domain

// MaxCollectionNameLength bounds user-supplied collection names.
const MaxCollectionNameLength = 30

// Collection is a named grouping of books, identified solely by its name
// (case-sensitive). Membership is derived, not stored here: it is the set of
// books whose CustomCollections contains the name.
type Collection struct {
	Name string `json:"name"`
	// Count is the derived number of member books, populated on read paths.
	Count int `json:"count,omitempty"`
}
