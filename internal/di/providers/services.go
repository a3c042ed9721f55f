package providers

import (
	"github.com/samber/do/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/backup"
	"github.com/scriptoriumapp/scriptorium-server/internal/config"
	"github.com/scriptoriumapp/scriptorium-server/internal/logger"
	"github.com/scriptoriumapp/scriptorium-server/internal/service"
	"github.com/scriptoriumapp/scriptorium-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideBookService provides the book repository.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewBookService(storeHandle.Gateway, sseHandle.Manager, log.Logger)
	log.Info("Book service ready", "books", svc.Count())
	return svc, nil
}

// ProvideCollectionService provides the collection registry.
func ProvideCollectionService(i do.Injector) (*service.CollectionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollectionService(storeHandle.Gateway, sseHandle.Manager, log.Logger), nil
}

// ProvideBackupService provides the CSV backup service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	books := do.MustInvoke[*service.BookService](i)
	collections := do.MustInvoke[*service.CollectionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(books, collections, cfg.Backup.Dir, log.Logger), nil
}
