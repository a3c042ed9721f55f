package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/internal/htmlutil"
)

const defaultLimit = 10

// Result is one Google Books match, already flattened for the caller.
type Result struct {
	Title         string
	Author        string
	ISBN          string
	CoverImageURL string
	Description   string
	Pages         *int
	PublishedDate string
}

// Search queries the volumes API with a free-form query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", defaultLimit))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching Google Books", "query", query)

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

	var vr volumesResponse
	if err := json.UnmarshalRead(resp.Body, &vr); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("Google Books search results", "query", query, "count", vr.TotalItems)

	results := make([]Result, 0, len(vr.Items))
	for i := range vr.Items {
		results = append(results, mapVolume(&vr.Items[i]))
	}
	return results, nil
}

// SearchByISBN queries with Google's isbn: operator.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) ([]Result, error) {
	return c.Search(ctx, "isbn:"+isbn)
}

// SearchByTitleAndAuthor narrows the query with intitle/inauthor operators.
func (c *Client) SearchByTitleAndAuthor(ctx context.Context, title, author string) ([]Result, error) {
	query := "intitle:" + strings.TrimSpace(title)
	if author != "" {
		query += " inauthor:" + strings.TrimSpace(author)
	}
	return c.Search(ctx, query)
}

func mapVolume(v *volume) Result {
	info := v.VolumeInfo

	r := Result{
		Title:         info.Title,
		ISBN:          pickISBN(info.IndustryIdentifiers),
		CoverImageURL: pickCover(info.ImageLinks),
		Description:   htmlutil.ToMarkdown(info.Description),
		PublishedDate: info.PublishedDate,
	}
	if len(info.Authors) > 0 {
		r.Author = info.Authors[0]
	}
	if info.PageCount > 0 {
		pages := info.PageCount
		r.Pages = &pages
	}
	return r
}

// pickISBN prefers ISBN_13 over ISBN_10.
func pickISBN(ids []industryIdentifier) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}

// pickCover prefers the larger thumbnail and upgrades to https. Google still
// hands out http image links.
func pickCover(links imageLinks) string {
	u := links.Thumbnail
	if u == "" {
		u = links.SmallThumbnail
	}
	return strings.Replace(u, "http://", "https://", 1)
}
