// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Import Pipeline
//
//   - Picker: chooses the archive to import (internal/importers/picker.go)
//   - Extractor: unpacks it into a scratch directory (internal/importers/pipeline.go)
//   - Transformer: builds the profile from the export files (internal/importers/pipeline.go)
//   - ProfileSaver: persists the finished profile (internal/importers/pipeline.go)
//   - SessionRecorder: keeps the import history (internal/importers/pipeline.go)
//   - MediaStore: copies media into the durable media directory (internal/importers/instagram/transform.go)
//
// ## Entry Points
//
// The HTTP API, the task queue and the inbox watcher each declare their own
// ArchiveImporter and ImportAuditor. importers.Service and audit.Auditor
// satisfy all of them.
//
// ## Background Tasks
//
//   - ScratchCleaner, ProfileLister, MediaPruner (internal/tasks)
//   - Enqueuer (internal/scheduler)
//
// # Adding a New Archive Source
//
// To let archives arrive from somewhere new (e.g., a cloud drive):
//
//  1. Implement importers.Picker so that Pick returns a local path:
//
//     type DrivePicker struct {
//         client   DriveClient
//         spoolDir string
//     }
//
//     func (p *DrivePicker) Pick(ctx context.Context) (importers.Selection, error)
//
//     var _ importers.Picker = (*DrivePicker)(nil)
//
//  2. Run it through importers.Service.Import. Extraction, cleanup and
//     persistence are shared by every source.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go.
package interfaces
