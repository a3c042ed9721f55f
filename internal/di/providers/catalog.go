package providers

import (
	"github.com/samber/do/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/config"
	"github.com/scriptoriumapp/scriptorium-server/internal/logger"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/googlebooks"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata/openlibrary"
	"github.com/scriptoriumapp/scriptorium-server/internal/ratelimit"
)

// ProvideGoogleBooksClient provides the Google Books catalog client.
func ProvideGoogleBooksClient(i do.Injector) (*googlebooks.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.GoogleBooksAPIKey == "" {
		log.Info("Google Books API key not set, using unauthenticated quota")
	}

	return googlebooks.NewClient(cfg.Catalog.GoogleBooksAPIKey, log.Logger), nil
}

// ProvideOpenLibraryClient provides the Open Library catalog client.
func ProvideOpenLibraryClient(i do.Injector) (*openlibrary.Client, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return openlibrary.NewClient(log.Logger), nil
}

// ProvideSearcher provides the combined catalog searcher.
func ProvideSearcher(i do.Injector) (*metadata.Searcher, error) {
	google := do.MustInvoke[*googlebooks.Client](i)
	openLibrary := do.MustInvoke[*openlibrary.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return metadata.NewSearcher(google, openLibrary, log.Logger), nil
}

// ProvideSearchLimiter provides the per-client limiter for inbound catalog
// search requests.
func ProvideSearchLimiter(i do.Injector) (*ratelimit.KeyedRateLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return ratelimit.New(cfg.Catalog.SearchRPS, cfg.Catalog.SearchBurst), nil
}
