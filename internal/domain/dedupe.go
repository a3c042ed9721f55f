package domain

import "strings"

// normalize trims whitespace and lowercases for comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeISBN trims, lowercases, and strips hyphens so that
// "978-0-143-10550-9" and "9780143105509" compare equal.
func NormalizeISBN(isbn string) string {
	return strings.ReplaceAll(normalize(isbn), "-", "")
}

// IsDuplicate reports whether the candidate (title, author, isbn) matches an
// existing book. Two independent criteria, either is sufficient:
//
//   - both sides have a non-empty normalized ISBN and they match exactly, or
//   - normalized title and normalized author both match exactly.
func IsDuplicate(existing *Book, title, author, isbn string) bool {
	candISBN := NormalizeISBN(isbn)
	bookISBN := NormalizeISBN(existing.ISBN)
	if candISBN != "" && bookISBN != "" && candISBN == bookISBN {
		return true
	}

	return normalize(existing.Title) == normalize(title) &&
		normalize(existing.Author) == normalize(author)
}

// FindDuplicate returns the first book matching the candidate, or nil.
func FindDuplicate(books []*Book, title, author, isbn string) *Book {
	for _, b := range books {
		if IsDuplicate(b, title, author, isbn) {
			return b
		}
	}
	return nil
}
