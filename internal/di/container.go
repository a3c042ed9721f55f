// Package di provides dependency injection configuration for the Scriptorium server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/backup"
	"github.com/scriptoriumapp/scriptorium-server/internal/config"
	"github.com/scriptoriumapp/scriptorium-server/internal/di/providers"
	"github.com/scriptoriumapp/scriptorium-server/internal/logger"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata"
	"github.com/scriptoriumapp/scriptorium-server/internal/service"
	"github.com/scriptoriumapp/scriptorium-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideGoogleBooksClient)
	do.Provide(injector, providers.ProvideOpenLibraryClient)
	do.Provide(injector, providers.ProvideSearcher)
	do.Provide(injector, providers.ProvideSearchLimiter)

	// Business services
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideCollectionService)
	do.Provide(injector, providers.ProvideBackupService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*metadata.Searcher](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.CollectionService](injector)
	_ = do.MustInvoke[*backup.Service](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
