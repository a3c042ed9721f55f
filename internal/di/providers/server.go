package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/api"
	"github.com/scriptoriumapp/scriptorium-server/internal/backup"
	"github.com/scriptoriumapp/scriptorium-server/internal/config"
	"github.com/scriptoriumapp/scriptorium-server/internal/logger"
	"github.com/scriptoriumapp/scriptorium-server/internal/metadata"
	"github.com/scriptoriumapp/scriptorium-server/internal/ratelimit"
	"github.com/scriptoriumapp/scriptorium-server/internal/service"
	"github.com/scriptoriumapp/scriptorium-server/internal/sse"
	"github.com/scriptoriumapp/scriptorium-server/internal/validation"
)

// apiVersion is reported by the health endpoint and the OpenAPI document.
const apiVersion = "1.0.0"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	bookService := do.MustInvoke[*service.BookService](i)
	collectionService := do.MustInvoke[*service.CollectionService](i)
	backupService := do.MustInvoke[*backup.Service](i)
	searcher := do.MustInvoke[*metadata.Searcher](i)
	validator := do.MustInvoke[*validation.Validator](i)
	searchLimiter := do.MustInvoke[*ratelimit.KeyedRateLimiter](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)

	handler := api.NewServer(api.Options{
		Books:         bookService,
		Collections:   collectionService,
		Backups:       backupService,
		Searcher:      searcher,
		Validator:     validator,
		SearchLimiter: searchLimiter,
		SSEHandler:    sseHandler,
		Logger:        log.Logger,
		Version:       apiVersion,
		CORSOrigins:   cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
