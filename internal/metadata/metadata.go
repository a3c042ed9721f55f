// Package metadata provides catalog search over external book APIs.
// Candidates are suggestions only: nothing enters the library until the user
// accepts one, and every field on a candidate is optional.
package metadata

import (
	"sort"
	"strings"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
)

// Source identifies which catalog produced a candidate.
type Source string

// Candidate sources.
const (
	SourceGoogle      Source = "google"
	SourceOpenLibrary Source = "openlibrary"
)

// Candidate is one external catalog match. Pages is nil when the catalog did
// not report a page count.
type Candidate struct {
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
	Description   string `json:"description,omitempty"`
	Pages         *int   `json:"pages,omitempty"`
	PublishedDate string `json:"publishedDate,omitempty"`
	Source        Source `json:"source,omitempty"`
	Completeness  int    `json:"completeness"`
}

// completenessFields is the number of fields scored by Completeness.
const completenessFields = 6

// ScoreCompleteness rates how many of the six scored fields carry data,
// as a 0-100 percentage.
func ScoreCompleteness(c Candidate) int {
	score := 0
	if c.Title != "" {
		score++
	}
	if c.Author != "" {
		score++
	}
	if c.ISBN != "" {
		score++
	}
	if c.Pages != nil && *c.Pages > 0 {
		score++
	}
	if c.Description != "" {
		score++
	}
	if c.CoverImageURL != "" {
		score++
	}
	return score * 100 / completenessFields
}

// SortByCompleteness orders candidates most complete first, preserving the
// catalog's relative order among equals.
func SortByCompleteness(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Completeness > candidates[j].Completeness
	})
}

// DraftFromCandidate converts an accepted candidate into a book draft. The
// caller supplies status and shelf; empty candidate fields stay empty on the
// draft. A missing title or author comes back as-is and fails draft
// validation downstream, which is intended.
func DraftFromCandidate(c Candidate, status domain.Status, shelf domain.Shelf) domain.BookDraft {
	return domain.BookDraft{
		Title:         strings.TrimSpace(c.Title),
		Author:        strings.TrimSpace(c.Author),
		ISBN:          c.ISBN,
		CoverImageURL: c.CoverImageURL,
		Collection:    shelf,
		Status:        status,
		Pages:         c.Pages,
		PublishedDate: c.PublishedDate,
		Description:   c.Description,
	}
}
