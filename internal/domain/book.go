// Package domain contains the core business entities for the Scriptorium
// personal library.
package domain

import "slices"

// Shelf is the primary two-valued grouping stored on each book.
type Shelf string

// Shelf values.
const (
	ShelfLibrary  Shelf = "library"
	ShelfWishlist Shelf = "wishlist"
)

// Status is the reading status of a book.
type Status string

// Status values.
const (
	StatusRead          Status = "read"
	StatusReading       Status = "reading"
	StatusToRead        Status = "to-read"
	StatusNotInterested Status = "not-interested"
	StatusBorrowed      Status = "borrowed"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusRead, StatusReading, StatusToRead, StatusNotInterested, StatusBorrowed:
		return true
	}
	return false
}

// Format is the physical form of a book.
type Format string

// Format values.
const (
	FormatPhysical Format = "physical"
	FormatDigital  Format = "digital"
)

// Book represents a tracked title in the user's library.
//
// Timestamps are epoch milliseconds. CustomCollections is semantically a set
// stored as an ordered sequence; every name in it is expected to exist in the
// collection registry (import auto-registers unknown names).
type Book struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Author            string   `json:"author"`
	ISBN              string   `json:"isbn,omitempty"`
	CoverImageURL     string   `json:"coverImageUrl,omitempty"`
	Collection        Shelf    `json:"collection,omitempty"`
	Status            Status   `json:"status"`
	PagesRead         *int     `json:"pagesRead,omitempty"`
	Pages             *int     `json:"pages,omitempty"`
	PublishedDate     string   `json:"publishedDate,omitempty"`
	Description       string   `json:"description,omitempty"`
	Format            Format   `json:"format,omitempty"`
	BorrowedBy        string   `json:"borrowedBy,omitempty"`
	Category          string   `json:"category,omitempty"`
	Owner             string   `json:"owner,omitempty"`
	CustomCollections []string `json:"customCollections,omitempty"`
	CreatedAt         int64    `json:"createdAt"`
	UpdatedAt         int64    `json:"updatedAt"`
}

// Clone returns a deep copy of the book.
func (b *Book) Clone() *Book {
	c := *b
	c.CustomCollections = slices.Clone(b.CustomCollections)
	if b.PagesRead != nil {
		v := *b.PagesRead
		c.PagesRead = &v
	}
	if b.Pages != nil {
		v := *b.Pages
		c.Pages = &v
	}
	return &c
}

// InCollection reports whether the book belongs to the named collection.
func (b *Book) InCollection(name string) bool {
	return slices.Contains(b.CustomCollections, name)
}

// AddCustomCollection adds the name to the book's collections if not already
// present. Returns true if the book changed.
func (b *Book) AddCustomCollection(name string) bool {
	if slices.Contains(b.CustomCollections, name) {
		return false
	}
	b.CustomCollections = append(b.CustomCollections, name)
	return true
}

// RemoveCustomCollection removes the name from the book's collections.
// Returns true if the book changed.
func (b *Book) RemoveCustomCollection(name string) bool {
	for i, n := range b.CustomCollections {
		if n == name {
			b.CustomCollections = append(b.CustomCollections[:i], b.CustomCollections[i+1:]...)
			return true
		}
	}
	return false
}

// RenameCustomCollection rewrites oldName to newName, preserving set
// semantics: if the book already carries newName, oldName is just dropped.
// Returns true if the book changed.
func (b *Book) RenameCustomCollection(oldName, newName string) bool {
	if !slices.Contains(b.CustomCollections, oldName) {
		return false
	}
	b.RemoveCustomCollection(oldName)
	b.AddCustomCollection(newName)
	return true
}

// BookDraft holds the caller-supplied fields for a new book.
// ID and timestamps are assigned by the repository.
type BookDraft struct {
	Title             string   `json:"title" validate:"required"`
	Author            string   `json:"author" validate:"required"`
	ISBN              string   `json:"isbn,omitempty"`
	CoverImageURL     string   `json:"coverImageUrl,omitempty"`
	Collection        Shelf    `json:"collection,omitempty" validate:"omitempty,oneof=library wishlist"`
	Status            Status   `json:"status" validate:"required,oneof=read reading to-read not-interested borrowed"`
	PagesRead         *int     `json:"pagesRead,omitempty" validate:"omitempty,gte=0"`
	Pages             *int     `json:"pages,omitempty" validate:"omitempty,gt=0"`
	PublishedDate     string   `json:"publishedDate,omitempty"`
	Description       string   `json:"description,omitempty"`
	Format            Format   `json:"format,omitempty" validate:"omitempty,oneof=physical digital"`
	BorrowedBy        string   `json:"borrowedBy,omitempty"`
	Category          string   `json:"category,omitempty"`
	Owner             string   `json:"owner,omitempty"`
	CustomCollections []string `json:"customCollections,omitempty" validate:"omitempty,dive,max=30"`
}

// BookUpdate holds a partial update. Nil fields are left untouched; the
// repository merges provided fields over the existing record without
// cross-field validation (caller responsibility).
type BookUpdate struct {
	Title             *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Author            *string  `json:"author,omitempty" validate:"omitempty,min=1"`
	ISBN              *string  `json:"isbn,omitempty"`
	CoverImageURL     *string  `json:"coverImageUrl,omitempty"`
	Collection        *Shelf   `json:"collection,omitempty" validate:"omitempty,oneof=library wishlist"`
	Status            *Status  `json:"status,omitempty" validate:"omitempty,oneof=read reading to-read not-interested borrowed"`
	PagesRead         *int     `json:"pagesRead,omitempty" validate:"omitempty,gte=0"`
	Pages             *int     `json:"pages,omitempty" validate:"omitempty,gt=0"`
	PublishedDate     *string  `json:"publishedDate,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Format            *Format  `json:"format,omitempty" validate:"omitempty,oneof=physical digital"`
	BorrowedBy        *string  `json:"borrowedBy,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Owner             *string  `json:"owner,omitempty"`
	CustomCollections []string `json:"customCollections,omitempty"`
}

// BookRecord is a loosely-typed book as produced by backup decoding.
// It is not yet validated against Book invariants; ImportBatch assigns
// missing ids and timestamps.
type BookRecord struct {
	ID                string   `json:"id,omitempty"`
	Title             string   `json:"title,omitempty"`
	Author            string   `json:"author,omitempty"`
	ISBN              string   `json:"isbn,omitempty"`
	CoverImageURL     string   `json:"coverImageUrl,omitempty"`
	Collection        string   `json:"collection,omitempty"`
	Status            string   `json:"status,omitempty"`
	PagesRead         *int     `json:"pagesRead,omitempty"`
	Pages             *int     `json:"pages,omitempty"`
	PublishedDate     string   `json:"publishedDate,omitempty"`
	Description       string   `json:"description,omitempty"`
	Format            string   `json:"format,omitempty"`
	BorrowedBy        string   `json:"borrowedBy,omitempty"`
	Category          string   `json:"category,omitempty"`
	Owner             string   `json:"owner,omitempty"`
	CustomCollections []string `json:"customCollections"`
	CreatedAt         *int64   `json:"createdAt,omitempty"`
	UpdatedAt         *int64   `json:"updatedAt,omitempty"`
}

// RecordFromBook converts a live book into its loose record form.
func RecordFromBook(b *Book) BookRecord {
	created := b.CreatedAt
	updated := b.UpdatedAt
	return BookRecord{
		ID:                b.ID,
		Title:             b.Title,
		Author:            b.Author,
		ISBN:              b.ISBN,
		CoverImageURL:     b.CoverImageURL,
		Collection:        string(b.Collection),
		Status:            string(b.Status),
		PagesRead:         b.PagesRead,
		Pages:             b.Pages,
		PublishedDate:     b.PublishedDate,
		Description:       b.Description,
		Format:            string(b.Format),
		BorrowedBy:        b.BorrowedBy,
		Category:          b.Category,
		Owner:             b.Owner,
		CustomCollections: b.CustomCollections,
		CreatedAt:         &created,
		UpdatedAt:         &updated,
	}
}
