package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/scriptoriumapp/scriptorium-server/internal/backup"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/v1/backup/export",
		Summary:       "Create backup",
		Description:   "Writes the current library to a timestamped CSV file",
		Tags:          []string{"Backup"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/v1/backup",
		Summary:     "List backups",
		Tags:        []string{"Backup"},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBackup",
		Method:        http.MethodDelete,
		Path:          "/api/v1/backup/{id}",
		Summary:       "Delete backup",
		Tags:          []string{"Backup"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "importBackup",
		Method:      http.MethodPost,
		Path:        "/api/v1/backup/import",
		Summary:     "Import backup",
		Description: "Decodes CSV text and upserts the books it contains",
		Tags:        []string{"Backup"},
	}, s.handleImportBackup)
}

// === DTOs ===

type BackupOutput struct {
	Body backup.BackupInfo
}

type ListBackupsResponse struct {
	Backups []backup.BackupInfo `json:"backups"`
}

type ListBackupsOutput struct {
	Body ListBackupsResponse
}

type DeleteBackupInput struct {
	ID string `path:"id" doc:"Backup ID"`
}

type ImportBackupInput struct {
	RawBody []byte `contentType:"text/csv"`
}

type ImportBackupOutput struct {
	Body backup.ImportResult
}

// === Handlers ===

func (s *Server) handleCreateBackup(ctx context.Context, _ *struct{}) (*BackupOutput, error) {
	info, err := s.backups.Export(ctx)
	if err != nil {
		return nil, err
	}
	return &BackupOutput{Body: *info}, nil
}

func (s *Server) handleListBackups(ctx context.Context, _ *struct{}) (*ListBackupsOutput, error) {
	backups, err := s.backups.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListBackupsOutput{Body: ListBackupsResponse{Backups: backups}}, nil
}

func (s *Server) handleDeleteBackup(ctx context.Context, input *DeleteBackupInput) (*struct{}, error) {
	if err := s.backups.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleImportBackup(ctx context.Context, input *ImportBackupInput) (*ImportBackupOutput, error) {
	result, err := s.backups.Import(ctx, string(input.RawBody))
	if err != nil {
		return nil, err
	}
	return &ImportBackupOutput{Body: *result}, nil
}

// handleBackupDownload streams the current library as a CSV attachment
// without writing anything to disk.
func (s *Server) handleBackupDownload(w http.ResponseWriter, r *http.Request) {
	text := s.backups.ExportText(r.Context())

	filename := fmt.Sprintf("scriptorium-%s.csv", time.Now().Format("2006-01-02-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(text)); err != nil {
		s.logger.Warn("backup download interrupted", "error", err)
	}
}
