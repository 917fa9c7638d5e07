package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Audit
		Global
		Database
		Storage
		Import
		Inbox
		Tasks
		Maintenance
	}

	HTTP struct {
		Port int32  `validate:"min=1,max=65535"`
		Host string `validate:"required"`
	}
	Audit struct {
		Dir string
	}
	Global struct {
		ShutdownTimeoutInSeconds int `validate:"min=0"`
	}
	Database struct {
		Path string `validate:"required"`
	}
	Storage struct {
		MediaDir   string `validate:"required"` // Durable home of migrated media
		ScratchDir string `validate:"required"` // Root of per-import extraction dirs
	}
	Import struct {
		CopyWorkers       int   `validate:"min=1,max=64"`
		MaxExtractedBytes int64 `validate:"min=1048576"`
		MaxUploadBytes    int64 `validate:"min=0"` // 0 disables the limit
	}
	Inbox struct {
		Dir string // Watched for dropped archives; empty disables the watcher
	}
	Tasks struct {
		Enabled         bool
		DBPath          string        `validate:"required_if=Enabled true"`
		Workers         int           `validate:"min=1,max=32"`
		ReleaseAfter    time.Duration `validate:"min=1s"`
		CleanupInterval time.Duration `validate:"min=1s"`
	}
	Maintenance struct {
		Schedule         string        `validate:"required,cron"` // Cron format: "30 3 * * *" = daily at 03:30
		ScratchRetention time.Duration `validate:"min=1h"`        // Age after which a scratch dir counts as abandoned
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_dir", "./audit")
	v.SetDefault("media_dir", DefaultMediaDir)
	v.SetDefault("scratch_dir", filepath.Join(os.TempDir(), DefaultScratchDirName))
	v.SetDefault("import_copy_workers", 4)
	v.SetDefault("import_max_extracted_bytes", DefaultMaxExtractedBytes)
	v.SetDefault("import_max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("inbox_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "90m") // Longer than the import task timeout
	v.SetDefault("task_cleanup_interval", "1h")

	// Maintenance defaults
	v.SetDefault("maintenance_schedule", "30 3 * * *") // Daily at 03:30
	v.SetDefault("scratch_retention", "6h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Audit: Audit{
			Dir: v.GetString("AUDIT_DIR"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			MediaDir:   v.GetString("MEDIA_DIR"),
			ScratchDir: v.GetString("SCRATCH_DIR"),
		},
		Import: Import{
			CopyWorkers:       v.GetInt("IMPORT_COPY_WORKERS"),
			MaxExtractedBytes: v.GetInt64("IMPORT_MAX_EXTRACTED_BYTES"),
			MaxUploadBytes:    v.GetInt64("IMPORT_MAX_UPLOAD_BYTES"),
		},
		Inbox: Inbox{
			Dir: v.GetString("INBOX_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DBPath:          v.GetString("TASKS_DATABASE_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Schedule:         v.GetString("MAINTENANCE_SCHEDULE"),
			ScratchRetention: v.GetDuration("SCRATCH_RETENTION"),
		},
	}
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("cron", validCron); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func validCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}
