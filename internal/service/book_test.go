package service

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
	"github.com/scriptoriumapp/scriptorium-server/internal/store"
)

// memStore is an in-memory SnapshotStore for tests.
type memStore struct {
	data    map[string]string
	saveErr error
	loadErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Load(key string) (string, bool, error) {
	if m.loadErr != nil {
		return "", false, m.loadErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Save(key, value string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data[key] = value
	return nil
}

// captureEmitter records every emitted event.
type captureEmitter struct {
	events []any
}

func (c *captureEmitter) Emit(event any) {
	c.events = append(c.events, event)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupBookService(t *testing.T) (*BookService, *memStore, *captureEmitter) {
	t.Helper()

	gateway := newMemStore()
	emitter := &captureEmitter{}
	svc := NewBookService(gateway, emitter, testLogger())

	// Deterministic clock, one tick per call.
	var tick int64
	svc.now = func() int64 {
		tick++
		return tick
	}
	return svc, gateway, emitter
}

func draft(title, author string) domain.BookDraft {
	return domain.BookDraft{Title: title, Author: author, Status: domain.StatusToRead}
}

func TestAdd_AssignsIDAndTimestamps(t *testing.T) {
	svc, gateway, emitter := setupBookService(t)

	book := svc.Add(draft("  Dune  ", " Frank Herbert "))

	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Equal(t, book.CreatedAt, book.UpdatedAt)
	assert.Equal(t, 1, svc.Count())

	require.Len(t, emitter.events, 1)
	ev, ok := emitter.events[0].(BookEvent)
	require.True(t, ok)
	assert.Equal(t, EventBookCreated, ev.Type)
	assert.Equal(t, 1, gateway.saves)
}

func TestAdd_NeverRejectsDuplicates(t *testing.T) {
	svc, _, _ := setupBookService(t)

	svc.Add(draft("Dune", "Frank Herbert"))
	svc.Add(draft("Dune", "Frank Herbert"))

	assert.Equal(t, 2, svc.Count())
}

func TestUpdate_EmptyBumpsOnlyTimestamp(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(draft("Dune", "Frank Herbert"))
	svc.Update(book.ID, domain.BookUpdate{})

	got := svc.GetByID(book.ID)
	require.NotNil(t, got)
	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.Author, got.Author)
	assert.Equal(t, book.Status, got.Status)
	assert.Equal(t, book.CreatedAt, got.CreatedAt)
	assert.Greater(t, got.UpdatedAt, book.UpdatedAt)
}

func TestUpdate_MergesOnlyProvidedFields(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(domain.BookDraft{
		Title:  "Dune",
		Author: "Frank Herbert",
		Status: domain.StatusReading,
		ISBN:   "9780441013593",
	})

	status := domain.StatusRead
	pages := 412
	svc.Update(book.ID, domain.BookUpdate{Status: &status, Pages: &pages})

	got := svc.GetByID(book.ID)
	require.NotNil(t, got)
	assert.Equal(t, domain.StatusRead, got.Status)
	require.NotNil(t, got.Pages)
	assert.Equal(t, 412, *got.Pages)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "9780441013593", got.ISBN)
}

func TestUpdate_UnknownIDIsSilentNoop(t *testing.T) {
	svc, gateway, emitter := setupBookService(t)

	svc.Update("book-missing", domain.BookUpdate{})

	assert.Empty(t, emitter.events)
	assert.Zero(t, gateway.saves)
}

func TestDelete_RemovesBook(t *testing.T) {
	svc, _, _ := setupBookService(t)

	a := svc.Add(draft("Dune", "Frank Herbert"))
	b := svc.Add(draft("Hyperion", "Dan Simmons"))

	svc.Delete(a.ID)

	assert.Nil(t, svc.GetByID(a.ID))
	assert.NotNil(t, svc.GetByID(b.ID))
	assert.Equal(t, 1, svc.Count())

	// Deleting again is a silent no-op.
	svc.Delete(a.ID)
	assert.Equal(t, 1, svc.Count())
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(draft("Dune", "Frank Herbert"))

	got := svc.GetByID(book.ID)
	got.Title = "mutated"
	got.CustomCollections = append(got.CustomCollections, "x")

	again := svc.GetByID(book.ID)
	assert.Equal(t, "Dune", again.Title)
	assert.Empty(t, again.CustomCollections)
}

func TestListByStatusAndShelf(t *testing.T) {
	svc, _, _ := setupBookService(t)

	svc.Add(domain.BookDraft{Title: "A", Author: "X", Status: domain.StatusRead, Collection: domain.ShelfLibrary})
	svc.Add(domain.BookDraft{Title: "B", Author: "Y", Status: domain.StatusReading, Collection: domain.ShelfWishlist})
	svc.Add(domain.BookDraft{Title: "C", Author: "Z", Status: domain.StatusRead, Collection: domain.ShelfLibrary})

	assert.Len(t, svc.ListByStatus(domain.StatusRead), 2)
	assert.Len(t, svc.ListByStatus(domain.StatusBorrowed), 0)
	assert.Len(t, svc.ListByShelf(domain.ShelfLibrary), 2)
	assert.Len(t, svc.ListByShelf(domain.ShelfWishlist), 1)
}

func TestSearch_SubstringOverTitleAuthorISBN(t *testing.T) {
	svc, _, _ := setupBookService(t)

	svc.Add(domain.BookDraft{Title: "Dune Messiah", Author: "Frank Herbert", Status: domain.StatusToRead, ISBN: "9780593098233"})
	svc.Add(domain.BookDraft{Title: "Hyperion", Author: "Dan Simmons", Status: domain.StatusToRead})

	assert.Len(t, svc.Search("dune"), 1)
	assert.Len(t, svc.Search("HERBERT"), 1)
	assert.Len(t, svc.Search("059309"), 1)
	assert.Len(t, svc.Search("simmons"), 1)
	assert.Len(t, svc.Search("asimov"), 0)
	// Search does not strip dashes; that is duplicate detection's rule.
	assert.Len(t, svc.Search("978-0593"), 0)
}

func TestFindDuplicate(t *testing.T) {
	svc, _, _ := setupBookService(t)

	svc.Add(domain.BookDraft{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusRead, ISBN: "9780441013593"})

	assert.NotNil(t, svc.FindDuplicate("dune", "FRANK HERBERT", ""))
	assert.NotNil(t, svc.FindDuplicate("Other", "Other", "978-0-441-01359-3"))
	assert.Nil(t, svc.FindDuplicate("Hyperion", "Dan Simmons", ""))
}

func TestAddToCollection_IdempotentNoSecondBump(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(draft("Dune", "Frank Herbert"))

	assert.True(t, svc.AddToCollection(book.ID, "Favorites"))
	first := svc.GetByID(book.ID)

	assert.False(t, svc.AddToCollection(book.ID, "Favorites"))
	second := svc.GetByID(book.ID)

	assert.Equal(t, []string{"Favorites"}, second.CustomCollections)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestRemoveFromCollection(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(draft("Dune", "Frank Herbert"))
	svc.AddToCollection(book.ID, "Favorites")

	assert.True(t, svc.RemoveFromCollection(book.ID, "Favorites"))
	assert.False(t, svc.RemoveFromCollection(book.ID, "Favorites"))
	assert.Empty(t, svc.GetByID(book.ID).CustomCollections)
}

func TestRenameCollectionReferences_Idempotent(t *testing.T) {
	svc, _, _ := setupBookService(t)

	a := svc.Add(draft("Dune", "Frank Herbert"))
	b := svc.Add(draft("Hyperion", "Dan Simmons"))
	c := svc.Add(draft("Foundation", "Isaac Asimov"))
	svc.AddToCollection(a.ID, "SciFi")
	svc.AddToCollection(b.ID, "SciFi")
	svc.AddToCollection(c.ID, "History")

	assert.Equal(t, 2, svc.RenameCollectionReferences("SciFi", "Science Fiction"))
	assert.Equal(t, []string{"Science Fiction"}, svc.GetByID(a.ID).CustomCollections)
	assert.Equal(t, []string{"History"}, svc.GetByID(c.ID).CustomCollections)

	// Second run finds nothing to rewrite.
	assert.Equal(t, 0, svc.RenameCollectionReferences("SciFi", "Science Fiction"))
}

func TestRenameCollectionReferences_MergesWhenTargetPresent(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(draft("Dune", "Frank Herbert"))
	svc.AddToCollection(book.ID, "SciFi")
	svc.AddToCollection(book.ID, "Classics")

	svc.RenameCollectionReferences("SciFi", "Classics")

	assert.Equal(t, []string{"Classics"}, svc.GetByID(book.ID).CustomCollections)
}

func TestSetCollectionMembership_Reconciles(t *testing.T) {
	svc, _, _ := setupBookService(t)

	a := svc.Add(draft("Dune", "Frank Herbert"))
	b := svc.Add(draft("Hyperion", "Dan Simmons"))
	c := svc.Add(draft("Foundation", "Isaac Asimov"))
	svc.AddToCollection(a.ID, "Favorites")
	svc.AddToCollection(b.ID, "Favorites")

	// Keep a, drop b, add c; unknown id is ignored.
	changed := svc.SetCollectionMembership("Favorites", []string{a.ID, c.ID, "book-ghost"})

	assert.Equal(t, 2, changed)
	assert.True(t, svc.GetByID(a.ID).InCollection("Favorites"))
	assert.False(t, svc.GetByID(b.ID).InCollection("Favorites"))
	assert.True(t, svc.GetByID(c.ID).InCollection("Favorites"))
}

func TestImportBatch_UpsertsByID(t *testing.T) {
	svc, _, _ := setupBookService(t)

	existing := svc.Add(draft("Dune", "Frank Herbert"))

	created := int64(100)
	records := []domain.BookRecord{
		{ID: existing.ID, Title: "Dune (Revised)", Author: "Frank Herbert", Status: "read", CreatedAt: &created},
		{Title: "Hyperion", Author: "Dan Simmons", Status: "to-read"},
	}

	assert.Equal(t, 2, svc.ImportBatch(records))
	assert.Equal(t, 2, svc.Count())

	got := svc.GetByID(existing.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Dune (Revised)", got.Title)
	assert.Equal(t, int64(100), got.CreatedAt)

	// The id-less record got a fresh id.
	hyperion := svc.Search("Hyperion")
	require.Len(t, hyperion, 1)
	assert.NotEmpty(t, hyperion[0].ID)
	assert.Equal(t, hyperion[0].CreatedAt, hyperion[0].UpdatedAt)
}

func TestImportBatch_LastRecordWinsWithinBatch(t *testing.T) {
	svc, _, _ := setupBookService(t)

	records := []domain.BookRecord{
		{ID: "book-1", Title: "First", Author: "A", Status: "read"},
		{ID: "book-1", Title: "Second", Author: "A", Status: "read"},
	}
	svc.ImportBatch(records)

	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, "Second", svc.GetByID("book-1").Title)
}

func TestImportBatch_RoundTripThroughSnapshot(t *testing.T) {
	gateway := newMemStore()
	svc := NewBookService(gateway, NoopEmitter{}, testLogger())

	pages := 412
	svc.ImportBatch([]domain.BookRecord{
		{ID: "book-1", Title: "Dune", Author: "Frank Herbert", Status: "read", Pages: &pages, CustomCollections: []string{"SciFi"}},
	})

	// A fresh service over the same gateway sees the imported state.
	reloaded := NewBookService(gateway, NoopEmitter{}, testLogger())
	got := reloaded.GetByID("book-1")
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Title)
	require.NotNil(t, got.Pages)
	assert.Equal(t, 412, *got.Pages)
	assert.Equal(t, []string{"SciFi"}, got.CustomCollections)
}

func TestUpdateProgress_ClampsToPageCount(t *testing.T) {
	svc, _, _ := setupBookService(t)

	pages := 300
	book := svc.Add(domain.BookDraft{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading, Pages: &pages})

	svc.UpdateProgress(book.ID, 500)
	assert.Equal(t, 300, *svc.GetByID(book.ID).PagesRead)

	svc.UpdateProgress(book.ID, -10)
	assert.Equal(t, 0, *svc.GetByID(book.ID).PagesRead)

	svc.UpdateProgress(book.ID, 150)
	assert.Equal(t, 150, *svc.GetByID(book.ID).PagesRead)
}

func TestUpdateProgress_NoopWithoutPageCount(t *testing.T) {
	svc, _, _ := setupBookService(t)

	book := svc.Add(draft("Dune", "Frank Herbert"))
	svc.UpdateProgress(book.ID, 50)

	assert.Nil(t, svc.GetByID(book.ID).PagesRead)
}

func TestIncrementPages(t *testing.T) {
	svc, _, _ := setupBookService(t)

	pages := 100
	book := svc.Add(domain.BookDraft{Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading, Pages: &pages})

	svc.IncrementPages(book.ID, 30)
	assert.Equal(t, 30, *svc.GetByID(book.ID).PagesRead)

	svc.IncrementPages(book.ID, 90)
	assert.Equal(t, 100, *svc.GetByID(book.ID).PagesRead)
}

func TestPersistFailure_DoesNotRollBack(t *testing.T) {
	gateway := newMemStore()
	gateway.saveErr = errors.New("disk full")
	svc := NewBookService(gateway, NoopEmitter{}, testLogger())

	book := svc.Add(draft("Dune", "Frank Herbert"))

	assert.NotNil(t, svc.GetByID(book.ID))
	assert.Empty(t, gateway.data[store.BooksKey])
}

func TestLoad_CorruptSnapshotStartsEmpty(t *testing.T) {
	gateway := newMemStore()
	gateway.data[store.BooksKey] = "{not json"

	svc := NewBookService(gateway, NoopEmitter{}, testLogger())
	assert.Zero(t, svc.Count())
}
