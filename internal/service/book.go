// Package service holds the authoritative in-memory state of the library and
// enforces its cross-entity invariants. All mutations pass through here so
// updatedAt bumping, observer notification, and snapshot persistence stay
// consistent.
package service

import (
	"encoding/json/v2"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
	"github.com/scriptoriumapp/scriptorium-server/internal/id"
	"github.com/scriptoriumapp/scriptorium-server/internal/store"
)

// SnapshotStore is the persistence gateway contract the services consume.
// A failed or absent load means "no prior state"; a failed save is logged and
// never rolls back the in-memory mutation.
type SnapshotStore interface {
	Load(key string) (string, bool, error)
	Save(key, value string) error
}

// BookService is the sole authority over the book set.
type BookService struct {
	mu      sync.RWMutex
	books   []*domain.Book
	index   map[string]int // id -> position in books
	gateway SnapshotStore
	emitter Emitter
	logger  *slog.Logger

	// now is injectable for tests; returns epoch milliseconds.
	now func() int64
}

// NewBookService creates a book service, loading any prior snapshot from the
// gateway.
func NewBookService(gateway SnapshotStore, emitter Emitter, logger *slog.Logger) *BookService {
	s := &BookService{
		index:   make(map[string]int),
		gateway: gateway,
		emitter: emitter,
		logger:  logger,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
	s.load()
	return s
}

// load restores the book set from the gateway snapshot.
func (s *BookService) load() {
	text, ok, err := s.gateway.Load(store.BooksKey)
	if err != nil {
		s.logger.Warn("loading book snapshot failed, starting empty", "error", err)
		return
	}
	if !ok {
		return
	}

	var books []*domain.Book
	if err := json.Unmarshal([]byte(text), &books); err != nil {
		s.logger.Warn("book snapshot unreadable, starting empty", "error", err)
		return
	}

	s.books = books
	for i, b := range books {
		s.index[b.ID] = i
	}
	s.logger.Info("book snapshot loaded", "count", len(books))
}

// persist writes the current book set to the gateway. Failures are logged
// and never roll back the in-memory state. Caller must hold the lock.
func (s *BookService) persist() {
	data, err := json.Marshal(s.books)
	if err != nil {
		s.logger.Error("marshal book snapshot", "error", err)
		return
	}
	if err := s.gateway.Save(store.BooksKey, string(data)); err != nil {
		s.logger.Warn("persist book snapshot", "error", err)
	}
}

// Add creates a book from the draft, assigning a fresh id and timestamps.
// Duplicate checking is opt-in via FindDuplicate; Add never rejects.
func (s *BookService) Add(draft domain.BookDraft) *domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	book := &domain.Book{
		ID:                id.MustGenerate("book"),
		Title:             strings.TrimSpace(draft.Title),
		Author:            strings.TrimSpace(draft.Author),
		ISBN:              draft.ISBN,
		CoverImageURL:     draft.CoverImageURL,
		Collection:        draft.Collection,
		Status:            draft.Status,
		PagesRead:         draft.PagesRead,
		Pages:             draft.Pages,
		PublishedDate:     draft.PublishedDate,
		Description:       draft.Description,
		Format:            draft.Format,
		BorrowedBy:        draft.BorrowedBy,
		Category:          draft.Category,
		Owner:             draft.Owner,
		CustomCollections: draft.CustomCollections,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	s.index[book.ID] = len(s.books)
	s.books = append(s.books, book)

	s.logger.Info("book added", "book_id", book.ID, "title", book.Title)
	s.emitter.Emit(BookEvent{Type: EventBookCreated, Book: book.Clone()})
	s.persist()

	return book.Clone()
}

// Update merges the provided fields over the existing record and bumps
// updatedAt. Silent no-op when the id is not found. Cross-field consistency
// (e.g. pagesRead vs status) is the caller's responsibility.
func (s *BookService) Update(bookID string, update domain.BookUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return
	}
	b := s.books[i]

	if update.Title != nil {
		b.Title = strings.TrimSpace(*update.Title)
	}
	if update.Author != nil {
		b.Author = strings.TrimSpace(*update.Author)
	}
	if update.ISBN != nil {
		b.ISBN = *update.ISBN
	}
	if update.CoverImageURL != nil {
		b.CoverImageURL = *update.CoverImageURL
	}
	if update.Collection != nil {
		b.Collection = *update.Collection
	}
	if update.Status != nil {
		b.Status = *update.Status
	}
	if update.PagesRead != nil {
		v := *update.PagesRead
		b.PagesRead = &v
	}
	if update.Pages != nil {
		v := *update.Pages
		b.Pages = &v
	}
	if update.PublishedDate != nil {
		b.PublishedDate = *update.PublishedDate
	}
	if update.Description != nil {
		b.Description = *update.Description
	}
	if update.Format != nil {
		b.Format = *update.Format
	}
	if update.BorrowedBy != nil {
		b.BorrowedBy = *update.BorrowedBy
	}
	if update.Category != nil {
		b.Category = *update.Category
	}
	if update.Owner != nil {
		b.Owner = *update.Owner
	}
	if update.CustomCollections != nil {
		b.CustomCollections = update.CustomCollections
	}
	b.UpdatedAt = s.now()

	s.emitter.Emit(BookEvent{Type: EventBookUpdated, Book: b.Clone()})
	s.persist()
}

// Delete removes the book if present; no-op otherwise. Does not cascade into
// the collection registry: a collection may end up with zero members.
func (s *BookService) Delete(bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return
	}

	s.books = append(s.books[:i], s.books[i+1:]...)
	delete(s.index, bookID)
	for j := i; j < len(s.books); j++ {
		s.index[s.books[j].ID] = j
	}

	s.logger.Info("book deleted", "book_id", bookID)
	s.emitter.Emit(BookEvent{Type: EventBookDeleted, ID: bookID})
	s.persist()
}

// GetByID returns a copy of the book, or nil if absent.
func (s *BookService) GetByID(bookID string) *domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[bookID]; ok {
		return s.books[i].Clone()
	}
	return nil
}

// List returns copies of all books in insertion order.
func (s *BookService) List() []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot copies the book list. Caller must hold at least the read lock.
func (s *BookService) snapshot() []*domain.Book {
	out := make([]*domain.Book, len(s.books))
	for i, b := range s.books {
		out[i] = b.Clone()
	}
	return out
}

// ListByStatus returns copies of all books with the given status.
func (s *BookService) ListByStatus(status domain.Status) []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Book
	for _, b := range s.books {
		if b.Status == status {
			out = append(out, b.Clone())
		}
	}
	return out
}

// ListByShelf returns copies of all books on the given primary shelf.
func (s *BookService) ListByShelf(shelf domain.Shelf) []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Book
	for _, b := range s.books {
		if b.Collection == shelf {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Search performs a case-insensitive substring match over title, author, and
// the raw isbn (no dash normalization on this path, unlike duplicate
// detection).
func (s *BookService) Search(query string) []*domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*domain.Book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			(b.ISBN != "" && strings.Contains(strings.ToLower(b.ISBN), q)) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// FindDuplicate reports an existing book matching the candidate
// title/author/isbn, or nil. Called voluntarily before Add.
func (s *BookService) FindDuplicate(title, author, isbn string) *domain.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if dup := domain.FindDuplicate(s.books, title, author, isbn); dup != nil {
		return dup.Clone()
	}
	return nil
}

// AddToCollection adds the book to the named collection. Idempotent: already
// a member means no change and no updatedAt bump. Returns true if the book
// changed.
func (s *BookService) AddToCollection(bookID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return false
	}
	b := s.books[i]
	if !b.AddCustomCollection(name) {
		return false
	}
	b.UpdatedAt = s.now()

	s.emitter.Emit(BookEvent{Type: EventBookUpdated, Book: b.Clone()})
	s.persist()
	return true
}

// RemoveFromCollection removes the book from the named collection.
// Idempotent; returns true if the book changed.
func (s *BookService) RemoveFromCollection(bookID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return false
	}
	b := s.books[i]
	if !b.RemoveCustomCollection(name) {
		return false
	}
	b.UpdatedAt = s.now()

	s.emitter.Emit(BookEvent{Type: EventBookUpdated, Book: b.Clone()})
	s.persist()
	return true
}

// RenameCollectionReferences rewrites oldName to newName on every book
// referencing it, bumping updatedAt only on books actually changed.
// Idempotent: a second run finds no references and touches zero books.
// Returns the number of books changed.
func (s *BookService) RenameCollectionReferences(oldName, newName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	changed := 0
	for _, b := range s.books {
		if b.RenameCustomCollection(oldName, newName) {
			b.UpdatedAt = now
			changed++
			s.emitter.Emit(BookEvent{Type: EventBookUpdated, Book: b.Clone()})
		}
	}

	if changed > 0 {
		s.logger.Info("collection references renamed",
			"old_name", oldName,
			"new_name", newName,
			"books_changed", changed,
		)
		s.persist()
	}
	return changed
}

// SetCollectionMembership reconciles the named collection's membership to
// exactly the given id set: current members absent from bookIDs are removed,
// ids not yet members are added, all others are untouched. Unknown ids are
// ignored. Returns the number of books changed.
func (s *BookService) SetCollectionMembership(name string, bookIDs []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[string]bool, len(bookIDs))
	for _, bid := range bookIDs {
		want[bid] = true
	}

	now := s.now()
	changed := 0
	for _, b := range s.books {
		var dirty bool
		if want[b.ID] {
			dirty = b.AddCustomCollection(name)
		} else {
			dirty = b.RemoveCustomCollection(name)
		}
		if dirty {
			b.UpdatedAt = now
			changed++
			s.emitter.Emit(BookEvent{Type: EventBookUpdated, Book: b.Clone()})
		}
	}

	if changed > 0 {
		s.persist()
	}
	return changed
}

// ImportBatch upserts the records by id: replace when the id is already
// present, insert otherwise, last record wins on id collision within the
// batch. Records lacking an id get a fresh one; records lacking createdAt get
// "now"; updatedAt is always "now". Returns the number of records applied.
func (s *BookService) ImportBatch(records []domain.BookRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, rec := range records {
		book := bookFromRecord(rec, now)
		if i, ok := s.index[book.ID]; ok {
			s.books[i] = book
		} else {
			s.index[book.ID] = len(s.books)
			s.books = append(s.books, book)
		}
	}

	s.logger.Info("books imported", "count", len(records), "total", len(s.books))
	s.emitter.Emit(ImportEvent{Type: EventBooksImported, Imported: len(records)})
	s.persist()
	return len(records)
}

// bookFromRecord materializes a loose record, filling id and timestamps.
func bookFromRecord(rec domain.BookRecord, now int64) *domain.Book {
	bookID := rec.ID
	if bookID == "" {
		bookID = id.MustGenerate("book")
	}
	createdAt := now
	if rec.CreatedAt != nil {
		createdAt = *rec.CreatedAt
	}

	return &domain.Book{
		ID:                bookID,
		Title:             rec.Title,
		Author:            rec.Author,
		ISBN:              rec.ISBN,
		CoverImageURL:     rec.CoverImageURL,
		Collection:        domain.Shelf(rec.Collection),
		Status:            domain.Status(rec.Status),
		PagesRead:         rec.PagesRead,
		Pages:             rec.Pages,
		PublishedDate:     rec.PublishedDate,
		Description:       rec.Description,
		Format:            domain.Format(rec.Format),
		BorrowedBy:        rec.BorrowedBy,
		Category:          rec.Category,
		Owner:             rec.Owner,
		CustomCollections: rec.CustomCollections,
		CreatedAt:         createdAt,
		UpdatedAt:         now,
	}
}

// UpdateProgress sets pagesRead, clamped to [0, pages]. No-op when the book
// is absent or has no page count. This is the one mutation path that
// revalidates progress; the generic Update does not.
func (s *BookService) UpdateProgress(bookID string, pagesRead int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateProgressLocked(bookID, pagesRead)
}

func (s *BookService) updateProgressLocked(bookID string, pagesRead int) {
	i, ok := s.index[bookID]
	if !ok {
		return
	}
	b := s.books[i]
	if b.Pages == nil {
		return
	}

	clamped := max(0, min(*b.Pages, pagesRead))
	b.PagesRead = &clamped
	b.UpdatedAt = s.now()

	s.emitter.Emit(BookEvent{Type: EventBookUpdated, Book: b.Clone()})
	s.persist()
}

// IncrementPages adds delta to the current pagesRead and clamps via
// UpdateProgress.
func (s *BookService) IncrementPages(bookID string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[bookID]
	if !ok {
		return
	}
	current := 0
	if pr := s.books[i].PagesRead; pr != nil {
		current = *pr
	}
	s.updateProgressLocked(bookID, current+delta)
}

// Count returns the number of books.
func (s *BookService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
