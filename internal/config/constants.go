package config

// Default locations
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./companion.db"

	// DefaultTasksDatabasePath holds the background task queue
	DefaultTasksDatabasePath = "./companion-tasks.db"

	// DefaultMediaDir is where imported media files are kept
	DefaultMediaDir = "./media"

	// DefaultScratchDirName is created under the OS temp dir to hold extracted archives
	DefaultScratchDirName = "companion-import"

	// DefaultMaxExtractedBytes caps the uncompressed size of one archive (4 GiB)
	DefaultMaxExtractedBytes int64 = 4 << 30

	// DefaultMaxUploadBytes caps the size of an archive uploaded over HTTP (2 GiB)
	DefaultMaxUploadBytes int64 = 2 << 30
)
