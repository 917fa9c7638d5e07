package entities

import (
	"time"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusSucceeded ImportStatus = "success"
	ImportStatusFailed    ImportStatus = "failed"
	ImportStatusCancelled ImportStatus = "cancelled"
)

// ImportSession records one import attempt, successful or not.
type ImportSession struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ArchiveName   string       `gorm:"size:512" json:"archive_name"`
	Status        ImportStatus `gorm:"size:20;index" json:"status"`
	Stage         string       `gorm:"size:20" json:"stage"`
	ProfileID     string       `gorm:"size:255" json:"profile_id,omitempty"`
	Error         string       `gorm:"type:text" json:"error,omitempty"`
	PostsImported int          `json:"posts_imported"`
	ItemIssues    int          `json:"item_issues"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
