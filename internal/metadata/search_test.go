package metadata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/googlebooks"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/openlibrary"
)

type fakeGoogle struct {
	results []googlebooks.Result
	err     error
	calls   int
}

func (f *fakeGoogle) Search(_ context.Context, _ string) ([]googlebooks.Result, error) {
	f.calls++
	return f.results, f.err
}

type fakeOpenLibrary struct {
	results []openlibrary.Result
	err     error
	calls   int
}

func (f *fakeOpenLibrary) Search(_ context.Context, _ string) ([]openlibrary.Result, error) {
	f.calls++
	return f.results, f.err
}

func newSearcher(g *fakeGoogle, ol *fakeOpenLibrary) *Searcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSearcher(g, ol, logger)
}

func TestSearch_GoogleResultsSkipOpenLibrary(t *testing.T) {
	google := &fakeGoogle{results: []googlebooks.Result{{Title: "Dune", Author: "Frank Herbert"}}}
	ol := &fakeOpenLibrary{}
	s := newSearcher(google, ol)

	candidates, err := s.Search(t.Context(), "dune")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, SourceGoogle, candidates[0].Source)
	assert.Zero(t, ol.calls)
}

func TestSearch_FallsBackWhenGoogleEmpty(t *testing.T) {
	google := &fakeGoogle{}
	ol := &fakeOpenLibrary{results: []openlibrary.Result{{Title: "Dune"}}}
	s := newSearcher(google, ol)

	candidates, err := s.Search(t.Context(), "dune")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, SourceOpenLibrary, candidates[0].Source)
}

func TestSearch_FallsBackWhenGoogleErrors(t *testing.T) {
	google := &fakeGoogle{err: errors.New("quota exceeded")}
	ol := &fakeOpenLibrary{results: []openlibrary.Result{{Title: "Dune"}}}
	s := newSearcher(google, ol)

	candidates, err := s.Search(t.Context(), "dune")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestSearch_BothFailingYieldsEmptyNotError(t *testing.T) {
	google := &fakeGoogle{err: errors.New("down")}
	ol := &fakeOpenLibrary{err: errors.New("also down")}
	s := newSearcher(google, ol)

	candidates, err := s.Search(t.Context(), "dune")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearch_BlankQueryYieldsEmpty(t *testing.T) {
	google := &fakeGoogle{}
	ol := &fakeOpenLibrary{}
	s := newSearcher(google, ol)

	candidates, err := s.Search(t.Context(), "   ")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, google.calls)
	assert.Zero(t, ol.calls)
}

func TestSearch_RanksByCompleteness(t *testing.T) {
	pages := 412
	google := &fakeGoogle{results: []googlebooks.Result{
		{Title: "Sparse"},
		{Title: "Rich", Author: "A", ISBN: "1", Pages: &pages, Description: "d", CoverImageURL: "u"},
	}}
	s := newSearcher(google, &fakeOpenLibrary{})

	candidates, err := s.Search(t.Context(), "q")
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, "Rich", candidates[0].Title)
	assert.Equal(t, 100, candidates[0].Completeness)
	assert.Equal(t, 16, candidates[1].Completeness)
}

func TestScoreCompleteness_ZeroPagesDoesNotCount(t *testing.T) {
	zero := 0
	assert.Equal(t, 16, ScoreCompleteness(Candidate{Title: "T", Pages: &zero}))
}

func TestDraftFromCandidate(t *testing.T) {
	pages := 412
	c := Candidate{
		Title:         "  Dune ",
		Author:        " Frank Herbert ",
		ISBN:          "9780441013593",
		CoverImageURL: "https://example.com/c.jpg",
		Description:   "Desert planet",
		Pages:         &pages,
		PublishedDate: "1965",
	}

	draft := DraftFromCandidate(c, domain.StatusToRead, domain.ShelfWishlist)

	assert.Equal(t, "Dune", draft.Title)
	assert.Equal(t, "Frank Herbert", draft.Author)
	assert.Equal(t, domain.StatusToRead, draft.Status)
	assert.Equal(t, domain.ShelfWishlist, draft.Collection)
	require.NotNil(t, draft.Pages)
	assert.Equal(t, 412, *draft.Pages)
	assert.Equal(t, "1965", draft.PublishedDate)
}
