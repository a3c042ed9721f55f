package backup

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
)

type fakeBooks struct {
	books    []*domain.Book
	imported []domain.BookRecord
}

func (f *fakeBooks) List() []*domain.Book { return f.books }

func (f *fakeBooks) ImportBatch(records []domain.BookRecord) int {
	f.imported = append(f.imported, records...)
	return len(records)
}

type fakeRegistry struct {
	names map[string]bool
}

func newFakeRegistry(names ...string) *fakeRegistry {
	r := &fakeRegistry{names: make(map[string]bool)}
	for _, n := range names {
		r.names[n] = true
	}
	return r
}

func (r *fakeRegistry) Add(name string) bool {
	if r.names[name] {
		return false
	}
	r.names[name] = true
	return true
}

func setupService(t *testing.T, books *fakeBooks, registry *fakeRegistry) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(books, registry, t.TempDir(), logger)
}

func sampleBooks() []*domain.Book {
	pages := 412
	return []*domain.Book{{
		ID:                "book-1",
		Title:             "Dune",
		Author:            "Frank Herbert",
		Status:            domain.StatusRead,
		Pages:             &pages,
		CustomCollections: []string{"SciFi"},
		CreatedAt:         100,
		UpdatedAt:         200,
	}}
}

func TestExport_WritesTimestampedFile(t *testing.T) {
	books := &fakeBooks{books: sampleBooks()}
	svc := setupService(t, books, newFakeRegistry())

	info, err := svc.Export(t.Context())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(info.ID, "scriptorium-"))
	assert.Positive(t, info.Size)

	data, err := os.ReadFile(info.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Dune"`)
}

func TestExportText(t *testing.T) {
	books := &fakeBooks{books: sampleBooks()}
	svc := setupService(t, books, newFakeRegistry())

	text := svc.ExportText(t.Context())
	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(Header, ","), lines[0])
}

func TestImport_RegistersUnknownCollections(t *testing.T) {
	books := &fakeBooks{}
	registry := newFakeRegistry("SciFi")
	svc := setupService(t, books, registry)

	text := strings.Join(Header, ",") + "\n" +
		`"book-1","Dune","Frank Herbert","","","","read",,,"","","","","","","SciFi;Classics",1,1`

	result, err := svc.Import(t.Context(), text)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, []string{"Classics"}, result.RegisteredCollections)
	require.Len(t, books.imported, 1)
	assert.Equal(t, "Dune", books.imported[0].Title)
}

func TestImport_CountsSkippedRows(t *testing.T) {
	books := &fakeBooks{}
	svc := setupService(t, books, newFakeRegistry())

	text := strings.Join(Header, ",") + "\n" +
		`"book-1","Dune","Frank Herbert","","","","read",,,"","","","","","","",1,1` + "\n" +
		`"broken","row"`

	result, err := svc.Import(t.Context(), text)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestImport_EmptyTextImportsNothing(t *testing.T) {
	books := &fakeBooks{}
	svc := setupService(t, books, newFakeRegistry())

	result, err := svc.Import(t.Context(), "")
	require.NoError(t, err)

	assert.Zero(t, result.Imported)
	assert.Empty(t, books.imported)
}

func TestListGetDelete(t *testing.T) {
	books := &fakeBooks{books: sampleBooks()}
	svc := setupService(t, books, newFakeRegistry())

	info, err := svc.Export(t.Context())
	require.NoError(t, err)

	list, err := svc.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, info.ID, list[0].ID)

	got, err := svc.Get(t.Context(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Path, got.Path)

	require.NoError(t, svc.Delete(t.Context(), info.ID))

	_, err = svc.Get(t.Context(), info.ID)
	assert.ErrorIs(t, err, ErrBackupNotFound)
	assert.ErrorIs(t, svc.Delete(t.Context(), info.ID), ErrBackupNotFound)
}

func TestList_MissingDirectoryIsEmpty(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(&fakeBooks{}, newFakeRegistry(), "/nonexistent/backups", logger)

	list, err := svc.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, list)
}
