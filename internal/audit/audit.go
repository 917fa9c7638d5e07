// Package audit keeps a JSON trail of import outcomes on disk.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/importers"
)

type Auditor struct {
	fs       afero.Fs
	AuditDir string
}

func NewAuditor(fs afero.Fs, auditDir string) *Auditor {
	return &Auditor{
		fs:       fs,
		AuditDir: auditDir,
	}
}

// ImportRecord summarizes one import attempt. The full profile is left out,
// it already lives in the database.
type ImportRecord struct {
	Source      string          `json:"source"`
	ArchiveName string          `json:"archive_name"`
	Success     bool            `json:"success"`
	Cancelled   bool            `json:"cancelled"`
	Stage       importers.Stage `json:"stage"`
	Error       string          `json:"error,omitempty"`
	ProfileID   string          `json:"profile_id,omitempty"`
	Username    string          `json:"username,omitempty"`
	Posts       int             `json:"posts"`
	MediaFiles  int             `json:"media_files"`
	Issues      int             `json:"issues"`
	RecordedAt  time.Time       `json:"recorded_at"`
}

// NewImportRecord builds the audit summary of an import result.
func NewImportRecord(source, archiveName string, result importers.ImportResult) ImportRecord {
	record := ImportRecord{
		Source:      source,
		ArchiveName: archiveName,
		Success:     result.Success,
		Cancelled:   result.Cancelled,
		Stage:       result.Stage,
		Error:       result.Error,
		Issues:      result.Issues,
		RecordedAt:  time.Now().UTC(),
	}
	if p := result.Profile; p != nil {
		record.ProfileID = p.ID
		record.Username = p.Username
		record.Posts = len(p.Posts)
		record.MediaFiles = p.MediaCount()
	}
	return record
}

// SaveImport writes the audit record of an import result.
func (a *Auditor) SaveImport(source, archiveName string, result importers.ImportResult) (string, error) {
	return a.SaveJSON(NewImportRecord(source, archiveName, result))
}

// SaveJSON saves the provided data as JSON to a file with UUID4 filename
func (a *Auditor) SaveJSON(data any) (string, error) {
	if err := a.fs.MkdirAll(a.AuditDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	filename := fmt.Sprintf("%s.json", uuid.New().String())
	path := filepath.Join(a.AuditDir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := afero.WriteFile(a.fs, path, jsonData, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	log.Printf("Saved audit file: %s", path)
	return filename, nil
}
