package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/scriptoriumapp/scriptorium-server/internal/domain"
)

// ErrBackupNotFound is returned when a backup ID does not exist on disk.
var ErrBackupNotFound = errors.New("backup not found")

const fileSuffix = ".csv"

// BookStore is the slice of the book repository the backup service needs.
type BookStore interface {
	List() []*domain.Book
	ImportBatch(records []domain.BookRecord) int
}

// Registry is the slice of the collection registry the backup service needs.
// Add must be safe to call with names that already exist.
type Registry interface {
	Add(name string) bool
}

// BackupInfo describes one backup file on disk.
type BackupInfo struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// ImportResult summarizes an applied import.
type ImportResult struct {
	Imported              int      `json:"imported"`
	Skipped               int      `json:"skipped"`
	RegisteredCollections []string `json:"registeredCollections,omitempty"`
}

// Service manages CSV backup files and routes imports into the repositories.
type Service struct {
	books     BookStore
	registry  Registry
	backupDir string
	logger    *slog.Logger
}

// NewService creates a backup Service.
func NewService(books BookStore, registry Registry, backupDir string, logger *slog.Logger) *Service {
	return &Service{
		books:     books,
		registry:  registry,
		backupDir: backupDir,
		logger:    logger,
	}
}

// ExportText renders the current library as CSV without touching disk.
// Used by the download endpoint.
func (s *Service) ExportText(ctx context.Context) string {
	return Encode(s.books.List())
}

// Export writes the current library to a timestamped CSV file in the backup
// directory and returns its info.
func (s *Service) Export(ctx context.Context) (*BackupInfo, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	books := s.books.List()
	name := fmt.Sprintf("scriptorium-%s%s", time.Now().Format("2006-01-02-150405"), fileSuffix)
	path := filepath.Join(s.backupDir, name)

	if err := os.WriteFile(path, []byte(Encode(books)), 0o644); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	s.logger.Info("backup created", "path", path, "books", len(books), "size", info.Size())

	return &BackupInfo{
		ID:        strings.TrimSuffix(name, fileSuffix),
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Import decodes the CSV text, upserts the records into the book repository,
// and registers any collection names the imported books carry that the
// registry does not know yet. Rows the codec rejected count as skipped.
func (s *Service) Import(ctx context.Context, text string) (*ImportResult, error) {
	records := Decode(text)
	skipped := dataRowCount(text) - len(records)

	if skipped > 0 {
		s.logger.Warn("import skipped malformed rows", "skipped", skipped)
	}
	if len(records) == 0 {
		return &ImportResult{Skipped: skipped}, nil
	}

	imported := s.books.ImportBatch(records)

	var registered []string
	for _, rec := range records {
		for _, name := range rec.CustomCollections {
			if s.registry.Add(name) {
				registered = append(registered, name)
			}
		}
	}

	s.logger.Info("import applied",
		"imported", imported,
		"skipped", skipped,
		"collections_registered", len(registered),
	)

	return &ImportResult{
		Imported:              imported,
		Skipped:               skipped,
		RegisteredCollections: registered,
	}, nil
}

// dataRowCount counts non-blank lines past the header.
func dataRowCount(text string) int {
	n := 0
	for line := range strings.SplitSeq(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return max(0, n-1)
}

// List returns all backups in the backup directory, newest first.
func (s *Service) List(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			ID:        strings.TrimSuffix(entry.Name(), fileSuffix),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get returns a backup by ID.
func (s *Service) Get(ctx context.Context, id string) (*BackupInfo, error) {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &BackupInfo{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	path := filepath.Join(s.backupDir, id+fileSuffix)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}

// GetPath returns the file path a backup ID maps to.
func (s *Service) GetPath(id string) string {
	return filepath.Join(s.backupDir, id+fileSuffix)
}
