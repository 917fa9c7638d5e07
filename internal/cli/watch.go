package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/audit"
	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/entrypoint"
	"github.com/mrlokans/companion/internal/watcher"
)

// WatchCommand imports archives dropped into an inbox directory until interrupted
type WatchCommand struct {
	InboxDir     string
	DatabasePath string
	MediaDir     string
	ScratchDir   string
	AuditDir     string
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand() *WatchCommand {
	return &WatchCommand{}
}

// ParseFlags parses command line flags
func (cmd *WatchCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)

	fs.StringVar(&cmd.InboxDir, "inbox", os.Getenv("INBOX_DIR"), "Directory to watch for Instagram archives (default $INBOX_DIR)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.MediaDir, "media", config.DefaultMediaDir, "Directory imported media files are copied into")
	fs.StringVar(&cmd.ScratchDir, "scratch", filepath.Join(os.TempDir(), config.DefaultScratchDirName), "Directory archives are extracted into while importing")
	fs.StringVar(&cmd.AuditDir, "audit", "./audit", "Directory import audit records are written to")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s watch [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import every .zip archive that appears in the inbox directory.\n")
		fmt.Fprintf(os.Stderr, "Imported archives move to <inbox>/%s, rejected ones to <inbox>/%s.\n\n", watcher.ProcessedDir, watcher.FailedDir)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.InboxDir == "" {
		return fmt.Errorf("inbox directory is required (-inbox or INBOX_DIR)")
	}
	return nil
}

// Run watches the inbox until ctx is cancelled
func (cmd *WatchCommand) Run(ctx context.Context) error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	fs := afero.NewOsFs()
	stack := entrypoint.NewImportStack(fs, db, entrypoint.ImportOptions{
		MediaDir:   cmd.MediaDir,
		ScratchDir: cmd.ScratchDir,
	})
	auditor := audit.NewAuditor(fs, cmd.AuditDir)

	return watcher.NewInboxWatcher(fs, cmd.InboxDir, stack.Service, auditor).Run(ctx)
}
