// Package backup implements the CSV backup format and the backup file
// service. The format is deliberately hand-rolled rather than RFC 4180:
// string fields are always quoted, numeric fields never are, and rows never
// span lines. Files written by older exports must keep decoding unchanged.
package backup

import (
	"strconv"
	"strings"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
)

// Header is the fixed column layout of a backup file.
var Header = []string{
	"id", "title", "author", "isbn", "coverImageUrl", "collection",
	"status", "pagesRead", "pages", "publishedDate", "description",
	"format", "borrowedBy", "category", "owner", "customCollections",
	"createdAt", "updatedAt",
}

// Encode renders the books as CSV text. Strings are always quoted with
// embedded quotes doubled, customCollections is joined with ";" before
// quoting, and numeric fields are written bare (empty when absent).
func Encode(books []*domain.Book) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(Header, ","))

	for _, b := range books {
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(encodeRow(b), ","))
	}
	return sb.String()
}

func encodeRow(b *domain.Book) []string {
	return []string{
		quote(b.ID),
		quote(b.Title),
		quote(b.Author),
		quote(b.ISBN),
		quote(b.CoverImageURL),
		quote(string(b.Collection)),
		quote(string(b.Status)),
		encodeIntPtr(b.PagesRead),
		encodeIntPtr(b.Pages),
		quote(b.PublishedDate),
		quote(b.Description),
		quote(string(b.Format)),
		quote(b.BorrowedBy),
		quote(b.Category),
		quote(b.Owner),
		quote(strings.Join(b.CustomCollections, ";")),
		strconv.FormatInt(b.CreatedAt, 10),
		strconv.FormatInt(b.UpdatedAt, 10),
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func encodeIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// Decode parses CSV text into loose book records. Blank lines are discarded;
// fewer than two remaining lines yields an empty result. Column order follows
// the file's own header line, so reordered exports still decode. Rows whose
// field count disagrees with the header are skipped.
func Decode(text string) []domain.BookRecord {
	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return []domain.BookRecord{}
	}

	headers := strings.Split(lines[0], ",")
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]domain.BookRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitLine(line)
		if len(values) != len(headers) {
			continue
		}

		var rec domain.BookRecord
		for i, h := range headers {
			setField(&rec, h, values[i])
		}
		if rec.CustomCollections == nil {
			rec.CustomCollections = []string{}
		}
		records = append(records, rec)
	}
	return records
}

func setField(rec *domain.BookRecord, header, value string) {
	switch header {
	case "id":
		rec.ID = value
	case "title":
		rec.Title = value
	case "author":
		rec.Author = value
	case "isbn":
		rec.ISBN = value
	case "coverImageUrl":
		rec.CoverImageURL = value
	case "collection":
		rec.Collection = value
	case "status":
		rec.Status = value
	case "pagesRead":
		rec.PagesRead = parseIntPtr(value)
	case "pages":
		rec.Pages = parseIntPtr(value)
	case "publishedDate":
		rec.PublishedDate = value
	case "description":
		rec.Description = value
	case "format":
		rec.Format = value
	case "borrowedBy":
		rec.BorrowedBy = value
	case "category":
		rec.Category = value
	case "owner":
		rec.Owner = value
	case "customCollections":
		rec.CustomCollections = parseCollections(value)
	case "createdAt":
		rec.CreatedAt = parseInt64Ptr(value)
	case "updatedAt":
		rec.UpdatedAt = parseInt64Ptr(value)
	}
}

func parseIntPtr(value string) *int {
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func parseInt64Ptr(value string) *int64 {
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// parseCollections splits on ";" and drops whitespace-only entries. Kept
// entries are not trimmed. Always returns a non-nil slice.
func parseCollections(value string) []string {
	out := []string{}
	if value == "" {
		return out
	}
	for _, part := range strings.Split(value, ";") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitLine splits one CSV line on commas outside quotes. A doubled quote
// inside a quoted region is a literal quote; any other quote toggles the
// quoted state and is dropped.
func splitLine(line string) []string {
	var result []string
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			if i+1 < len(line) && line[i+1] == '"' && inQuotes {
				current.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case c == ',' && !inQuotes:
			result = append(result, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	result = append(result, current.String())
	return result
}
