package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/companion/internal/archive"
	"github.com/mrlokans/companion/internal/audit"
	"github.com/mrlokans/companion/internal/cli"
	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/database/profiles"
	"github.com/mrlokans/companion/internal/database/sessions"
	"github.com/mrlokans/companion/internal/http"
	"github.com/mrlokans/companion/internal/importers"
	"github.com/mrlokans/companion/internal/importers/instagram"
	"github.com/mrlokans/companion/internal/media"
	"github.com/mrlokans/companion/internal/scheduler"
	"github.com/mrlokans/companion/internal/tasks"
	"github.com/mrlokans/companion/internal/watcher"
)

// =============================================================================
// Import Pipeline
// =============================================================================

// Picker implementations
var _ importers.Picker = importers.FilePicker{}
var _ importers.Picker = cli.PromptPicker{}

// Pipeline stages
var _ importers.Extractor = (*archive.Extractor)(nil)
var _ importers.Transformer = (*instagram.Transformer)(nil)
var _ instagram.MediaStore = (*media.Store)(nil)
var _ importers.ProfileSaver = (*profiles.Repository)(nil)
var _ importers.SessionRecorder = (*sessions.Repository)(nil)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ profiles.Store = (*database.Database)(nil)
var _ http.ProfileStore = (*profiles.Repository)(nil)
var _ http.SessionLister = (*sessions.Repository)(nil)

// =============================================================================
// Import Entry Points
// =============================================================================

var _ http.ArchiveImporter = (*importers.Service)(nil)
var _ tasks.ArchiveImporter = (*importers.Service)(nil)
var _ watcher.ArchiveImporter = (*importers.Service)(nil)

var _ http.ImportAuditor = (*audit.Auditor)(nil)
var _ tasks.ImportAuditor = (*audit.Auditor)(nil)
var _ watcher.ImportAuditor = (*audit.Auditor)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.ScratchCleaner = (*archive.Extractor)(nil)
var _ tasks.ProfileLister = (*profiles.Repository)(nil)
var _ tasks.MediaPruner = (*media.Store)(nil)
