package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const defaultLimit = 10

// searchResponse is the wire shape of a search.json response.
type searchResponse struct {
	Docs []doc `json:"docs"`
}

// doc is one Open Library work. first_sentence arrives as an array even
// though it usually holds a single entry.
type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	ISBN             []string `json:"isbn"`
	FirstPublishYear int      `json:"first_publish_year"`
	NumberOfPages    int      `json:"number_of_pages"`
	CoverID          int      `json:"cover_i"`
	FirstSentence    []string `json:"first_sentence"`
}

// Result is one Open Library match, flattened for the caller.
type Result struct {
	Title         string
	Author        string
	ISBN          string
	CoverImageURL string
	Description   string
	Pages         *int
	PublishedDate string
}

// Search queries search.json with a free-form query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprintf("%d", defaultLimit))

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching Open Library", "query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.UnmarshalRead(resp.Body, &sr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("Open Library search results", "query", query, "count", len(sr.Docs))

	results := make([]Result, 0, len(sr.Docs))
	for i := range sr.Docs {
		results = append(results, mapDoc(&sr.Docs[i]))
	}
	return results, nil
}

// SearchByISBN queries with the isbn field operator.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) ([]Result, error) {
	return c.Search(ctx, fmt.Sprintf("isbn:%q", isbn))
}

func mapDoc(d *doc) Result {
	r := Result{Title: d.Title}
	if len(d.AuthorName) > 0 {
		r.Author = d.AuthorName[0]
	}
	if len(d.ISBN) > 0 {
		r.ISBN = d.ISBN[0]
	}
	if len(d.FirstSentence) > 0 {
		r.Description = d.FirstSentence[0]
	}
	if d.NumberOfPages > 0 {
		pages := d.NumberOfPages
		r.Pages = &pages
	}
	if d.CoverID > 0 {
		r.CoverImageURL = fmt.Sprintf("%s/%d-M.jpg", coversBaseURL, d.CoverID)
	}
	if d.FirstPublishYear > 0 {
		r.PublishedDate = fmt.Sprintf("%d", d.FirstPublishYear)
	}
	return r
}
