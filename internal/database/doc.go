// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup, migrations, key-value store
//	├── profiles/        # Imported profiles stored as JSON records
//	└── sessions/        # Import attempt history
//
// Database itself is a durable string key-value store backed by the
// kv_records table. Profiles are one record each, keyed by profile id, so the
// whole store can be listed and wiped by key prefix.
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./companion.db")
//
//	profileRepo := profiles.NewRepository(db)
//	sessionRepo := sessions.NewRepository(db.DB)
//
//	all, err := profileRepo.Load()
//	history, err := sessionRepo.List(20)
//
// # Interface Implementations
//
//   - profiles.Repository: implements importers.ProfileSaver
//   - sessions.Repository: implements importers.SessionRecorder
package database
