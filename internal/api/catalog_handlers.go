package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/scriptoriumapp/scriptorium-server/internal/http/response"
)

// Catalog routes stay plain chi handlers: the per-IP rate limiter needs the
// client address, which the RealIP middleware leaves on RemoteAddr.

// handleCatalogSearch runs the combined external catalog search.
func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	if !s.searchLimiter.Allow(clientIP(r)) {
		response.TooManyRequests(w, "Too many catalog searches, slow down", s.logger)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, "Query parameter q is required", s.logger)
		return
	}

	candidates, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("catalog search failed", "query", query, "error", err)
		response.InternalError(w, "Catalog search failed", s.logger)
		return
	}

	response.Success(w, map[string]any{
		"candidates": candidates,
		"total":      len(candidates),
	}, s.logger)
}

// handleDuplicateCheck reports whether a likely duplicate already exists for
// the given title/author/isbn. Used by clients before adding a book.
func (s *Server) handleDuplicateCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := q.Get("title")
	author := q.Get("author")
	isbn := q.Get("isbn")

	if title == "" && isbn == "" {
		response.BadRequest(w, "At least one of title or isbn is required", s.logger)
		return
	}

	dup := s.books.FindDuplicate(title, author, isbn)
	response.Success(w, map[string]any{
		"duplicate": dup != nil,
		"book":      dup,
	}, s.logger)
}

// clientIP extracts the bare IP from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
