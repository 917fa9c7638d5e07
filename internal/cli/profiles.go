package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/database/profiles"
	"github.com/mrlokans/companion/internal/media"
)

// ProfilesCommand lists and deletes imported profiles
type ProfilesCommand struct {
	DatabasePath string
	MediaDir     string
	List         bool
	DeleteIDs    string
	Wipe         bool
	Prune        bool

	Out io.Writer
}

// NewProfilesCommand creates a new ProfilesCommand
func NewProfilesCommand() *ProfilesCommand {
	return &ProfilesCommand{Out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *ProfilesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.MediaDir, "media", config.DefaultMediaDir, "Directory holding imported media files")
	fs.BoolVar(&cmd.List, "list", false, "List imported profiles (default action)")
	fs.StringVar(&cmd.DeleteIDs, "delete", "", "Comma separated profile IDs to delete")
	fs.BoolVar(&cmd.Wipe, "wipe", false, "Delete every imported profile")
	fs.BoolVar(&cmd.Prune, "prune", false, "Remove media files no remaining profile references")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s profiles [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Manage imported Instagram profiles.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s profiles -list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s profiles -delete instagram_jane_1709294400000 -prune\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s profiles -wipe -prune\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.DeleteIDs != "" && cmd.Wipe {
		return fmt.Errorf("-delete and -wipe cannot be combined")
	}
	return nil
}

// Run executes the requested action
func (cmd *ProfilesCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := profiles.NewRepository(db)

	switch {
	case cmd.Wipe:
		deleted, err := repo.DeleteAll()
		if err != nil {
			return fmt.Errorf("failed to delete profiles: %w", err)
		}
		fmt.Fprintf(cmd.Out, "🗑️  Deleted %d profiles\n", deleted)

	case cmd.DeleteIDs != "":
		ids := splitIDs(cmd.DeleteIDs)
		deleted, err := repo.DeleteMany(ids...)
		if err != nil {
			return fmt.Errorf("failed to delete profiles: %w", err)
		}
		fmt.Fprintf(cmd.Out, "🗑️  Deleted %d of %d profiles\n", deleted, len(ids))

	case !cmd.Prune || cmd.List:
		if err := cmd.printList(repo); err != nil {
			return err
		}
	}

	if cmd.Prune {
		return cmd.pruneMedia(repo)
	}
	return nil
}

func (cmd *ProfilesCommand) printList(repo *profiles.Repository) error {
	stored, err := repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(stored) == 0 {
		fmt.Fprintln(cmd.Out, "ℹ️  No imported profiles")
		return nil
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tPOSTS\tFOLLOWERS\tFOLLOWING\tIMPORTED")
	for _, p := range stored {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			p.ID, p.Username, len(p.Posts), len(p.Followers), len(p.Following),
			p.WhenImported.Local().Format(time.DateTime))
	}
	return w.Flush()
}

// pruneMedia removes media files no stored profile references. It ignores
// file age, so it must not run while an import is in progress.
func (cmd *ProfilesCommand) pruneMedia(repo *profiles.Repository) error {
	stored, err := repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	keep := make(map[string]bool)
	for i := range stored {
		for _, path := range stored[i].MediaPaths() {
			keep[path] = true
		}
	}

	removed, err := media.NewStore(afero.NewOsFs(), cmd.MediaDir).Prune(keep, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to prune media: %w", err)
	}
	fmt.Fprintf(cmd.Out, "🧹 Removed %d unreferenced media files\n", removed)
	return nil
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
