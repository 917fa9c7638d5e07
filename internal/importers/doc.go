// Package importers runs an Instagram data export through the import
// pipeline:
//
//	Picker → Extractor → Discover → Transformer → ProfileSaver
//
// ArchiveImporter owns the sequencing. It creates a scratch area for every
// attempt and removes it exactly once, whatever the outcome, so no stored
// profile ever references extracted files.
//
// # Example Usage
//
//	importer := importers.NewArchiveImporter(importers.FilePicker{Path: path}, importers.Deps{
//		Fs:          fs,
//		Extractor:   archive.NewExtractor(fs, scratchDir, archive.DefaultMaxExtractedBytes),
//		Transformer: instagram.NewTransformer(fs, media.NewStore(fs, mediaDir), 4),
//		Saver:       profiles.NewRepository(db),
//		Sessions:    sessions.NewRepository(db.DB),
//	})
//	result := importer.ImportArchive(ctx)
package importers
