package entrypoint

import (
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/archive"
	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/database"
	"github.com/mrlokans/companion/internal/database/profiles"
	"github.com/mrlokans/companion/internal/database/sessions"
	"github.com/mrlokans/companion/internal/importers"
	"github.com/mrlokans/companion/internal/importers/instagram"
	"github.com/mrlokans/companion/internal/media"
)

// ImportOptions locates the storage an import stack works with.
type ImportOptions struct {
	MediaDir          string
	ScratchDir        string
	CopyWorkers       int
	MaxExtractedBytes int64
}

// ImportOptionsFromConfig reads ImportOptions from the application config.
func ImportOptionsFromConfig(cfg *config.Config) ImportOptions {
	return ImportOptions{
		MediaDir:          cfg.Storage.MediaDir,
		ScratchDir:        cfg.Storage.ScratchDir,
		CopyWorkers:       cfg.Import.CopyWorkers,
		MaxExtractedBytes: cfg.Import.MaxExtractedBytes,
	}
}

// ImportStack holds the collaborators of the import pipeline. The server, the
// CLI commands and the inbox watcher all build the same stack.
type ImportStack struct {
	Service   *importers.Service
	Extractor *archive.Extractor
	Media     *media.Store
	Profiles  *profiles.Repository
	Sessions  *sessions.Repository
}

func NewImportStack(fs afero.Fs, db *database.Database, opts ImportOptions) *ImportStack {
	extractor := archive.NewExtractor(fs, opts.ScratchDir, opts.MaxExtractedBytes)
	store := media.NewStore(fs, opts.MediaDir)
	profileRepo := profiles.NewRepository(db)
	sessionRepo := sessions.NewRepository(db.DB)

	service := importers.NewService(importers.Deps{
		Fs:          fs,
		Extractor:   extractor,
		Transformer: instagram.NewTransformer(fs, store, opts.CopyWorkers),
		Saver:       profileRepo,
		Sessions:    sessionRepo,
	})

	return &ImportStack{
		Service:   service,
		Extractor: extractor,
		Media:     store,
		Profiles:  profileRepo,
		Sessions:  sessionRepo,
	}
}
