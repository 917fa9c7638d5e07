package http

import (
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Importer ArchiveImporter
	Profiles ProfileStore
	Sessions SessionLister
	Auditor  ImportAuditor

	// Filesystem used to spool uploads
	Fs afero.Fs

	// Storage paths
	ScratchDir string // uploads queued for async import are spooled here
	MediaDir   string // served under /media

	// Largest accepted upload in bytes; zero means no limit
	MaxUploadBytes int64

	// Task queue client (optional)
	TaskQueue TaskQueue

	// Application info
	Version string
}
