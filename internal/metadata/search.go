package metadata

import (
	"context"
	"log/slog"
	"strings"

	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/googlebooks"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/openlibrary"
)

// GoogleSearcher is the slice of the Google Books client the combined
// searcher needs.
type GoogleSearcher interface {
	Search(ctx context.Context, query string) ([]googlebooks.Result, error)
}

// OpenLibrarySearcher is the slice of the Open Library client the combined
// searcher needs.
type OpenLibrarySearcher interface {
	Search(ctx context.Context, query string) ([]openlibrary.Result, error)
}

// Searcher queries Google Books first and falls back to Open Library when
// Google returns nothing or errors. Results are ranked by completeness.
type Searcher struct {
	google      GoogleSearcher
	openLibrary OpenLibrarySearcher
	logger      *slog.Logger
}

// NewSearcher creates a combined catalog searcher.
func NewSearcher(google GoogleSearcher, openLibrary OpenLibrarySearcher, logger *slog.Logger) *Searcher {
	return &Searcher{
		google:      google,
		openLibrary: openLibrary,
		logger:      logger,
	}
}

// Search runs the fallback chain for the query. A blank query yields no
// candidates. Both catalogs failing is not an error to the caller; the
// result is simply empty.
func (s *Searcher) Search(ctx context.Context, query string) ([]Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return []Candidate{}, nil
	}

	googleResults, err := s.google.Search(ctx, query)
	if err != nil {
		s.logger.Warn("Google Books search failed, falling back to Open Library",
			"query", query, "error", err)
	}
	if len(googleResults) > 0 {
		return s.rank(fromGoogle(googleResults)), nil
	}

	olResults, err := s.openLibrary.Search(ctx, query)
	if err != nil {
		s.logger.Warn("Open Library search failed", "query", query, "error", err)
		return []Candidate{}, nil
	}
	return s.rank(fromOpenLibrary(olResults)), nil
}

func (s *Searcher) rank(candidates []Candidate) []Candidate {
	for i := range candidates {
		candidates[i].Completeness = ScoreCompleteness(candidates[i])
	}
	SortByCompleteness(candidates)
	return candidates
}

func fromGoogle(results []googlebooks.Result) []Candidate {
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, Candidate{
			Title:         r.Title,
			Author:        r.Author,
			ISBN:          r.ISBN,
			CoverImageURL: r.CoverImageURL,
			Description:   r.Description,
			Pages:         r.Pages,
			PublishedDate: r.PublishedDate,
			Source:        SourceGoogle,
		})
	}
	return out
}

func fromOpenLibrary(results []openlibrary.Result) []Candidate {
	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, Candidate{
			Title:         r.Title,
			Author:        r.Author,
			ISBN:          r.ISBN,
			CoverImageURL: r.CoverImageURL,
			Description:   r.Description,
			Pages:         r.Pages,
			PublishedDate: r.PublishedDate,
			Source:        SourceOpenLibrary,
		})
	}
	return out
}
