package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/entrypoint"
	"github.com/mrlokans/companion/internal/importers"
	"github.com/mrlokans/companion/internal/importers/instagram"
)

// InstagramImportCommand imports one Instagram data export archive
type InstagramImportCommand struct {
	FilePath     string
	DatabasePath string
	MediaDir     string
	ScratchDir   string
	Workers      int
	Verbose      bool

	In  io.Reader
	Out io.Writer
}

// NewInstagramImportCommand creates a new InstagramImportCommand
func NewInstagramImportCommand() *InstagramImportCommand {
	return &InstagramImportCommand{
		In:  os.Stdin,
		Out: os.Stdout,
	}
}

// ParseFlags parses command line flags
func (cmd *InstagramImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("instagram-import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the Instagram export .zip (prompted for if not specified)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.MediaDir, "media", config.DefaultMediaDir, "Directory imported media files are copied into")
	fs.StringVar(&cmd.ScratchDir, "scratch", filepath.Join(os.TempDir(), config.DefaultScratchDirName), "Directory archives are extracted into while importing")
	fs.IntVar(&cmd.Workers, "workers", instagram.DefaultWorkers, "Number of media files copied in parallel")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s instagram-import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import an Instagram data export (the .zip from \"Download your information\").\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import a downloaded archive:\n")
		fmt.Fprintf(os.Stderr, "  %s instagram-import -file ~/Downloads/instagram-jane-2024-03-01.zip\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Ask for the archive path interactively:\n")
		fmt.Fprintf(os.Stderr, "  %s instagram-import -verbose\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the import command
func (cmd *InstagramImportCommand) Run(ctx context.Context) error {
	fmt.Fprintln(cmd.Out, "📷 Instagram Import")
	fmt.Fprintln(cmd.Out, "===================")

	if !cmd.Verbose {
		restore := silenceLog()
		defer restore()
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	stack := entrypoint.NewImportStack(afero.NewOsFs(), db, entrypoint.ImportOptions{
		MediaDir:    cmd.MediaDir,
		ScratchDir:  cmd.ScratchDir,
		CopyWorkers: cmd.Workers,
	})

	var picker importers.Picker = PromptPicker{In: cmd.In, Out: cmd.Out}
	if cmd.FilePath != "" {
		picker = importers.FilePicker{Path: cmd.FilePath}
	}

	result := stack.Service.Import(ctx, picker)
	cmd.printSummary(result)

	if result.Success || result.Cancelled {
		return nil
	}
	return fmt.Errorf("import failed while %s: %s", result.Stage, result.Error)
}

func (cmd *InstagramImportCommand) printSummary(result importers.ImportResult) {
	out := cmd.Out
	fmt.Fprintln(out)

	if result.Cancelled {
		fmt.Fprintf(out, "ℹ️  %s\n", result.Error)
		return
	}
	if !result.Success {
		fmt.Fprintf(out, "❌ %s\n", result.Error)
		return
	}

	p := result.Profile
	fmt.Fprintf(out, "✅ Imported @%s", p.Username)
	if p.FullName != "" {
		fmt.Fprintf(out, " (%s)", p.FullName)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "   Profile ID: %s\n", p.ID)
	fmt.Fprintf(out, "   Posts:      %d (%d media files)\n", len(p.Posts), p.MediaCount())
	fmt.Fprintf(out, "   Followers:  %d\n", len(p.Followers))
	fmt.Fprintf(out, "   Following:  %d\n", len(p.Following))
	if result.Issues > 0 {
		fmt.Fprintf(out, "⚠️  %d items could not be imported, see the log for details\n", result.Issues)
	}

	if cmd.Verbose {
		fmt.Fprintln(out, "\n=== Posts ===")
		for i, post := range p.Posts {
			fmt.Fprintf(out, "%d. %s [%s] %d media: %s\n",
				i+1, post.ID, post.Timestamp.Format("2006-01-02"), len(post.MediaURLs), truncate(post.Caption, 60))
		}
	}
}

// silenceLog discards package log output until the returned func is called.
func silenceLog() func() {
	prev := log.Writer()
	log.SetOutput(io.Discard)
	return func() { log.SetOutput(prev) }
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
