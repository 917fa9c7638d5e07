package importers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/archive"
	"github.com/mrlokans/companion/internal/entities"
	"github.com/mrlokans/companion/internal/importers/instagram"
)

// Stage is a step of the import pipeline.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageAcquiring    Stage = "acquiring"
	StageExtracting   Stage = "extracting"
	StageDiscovering  Stage = "discovering"
	StageTransforming Stage = "transforming"
	StagePersisting   Stage = "persisting"
	StageDone         Stage = "done"
)

// User facing failure messages.
const (
	MsgCancelled     = "File selection canceled"
	MsgParseFailed   = "Failed to parse Instagram data"
	MsgPersistFailed = "Failed to save imported profile"
	MsgInterrupted   = "Import was interrupted"
)

// ImportResult is the outcome of one import attempt. Profile is set only on
// success.
type ImportResult struct {
	Success   bool              `json:"success"`
	Cancelled bool              `json:"cancelled,omitempty"`
	Profile   *entities.Profile `json:"profile,omitempty"`
	Error     string            `json:"error,omitempty"`
	Stage     Stage             `json:"stage"`
	Issues    int               `json:"issues"`
}

// Extractor unpacks an archive into a fresh scratch directory. The directory
// is reported even when extraction fails after creating it, and stays in use
// until Release is called for it.
type Extractor interface {
	Extract(archivePath string) (scratchDir string, err error)
	Release(scratchDir string)
}

// Transformer builds a profile from the export files of an extracted archive.
type Transformer interface {
	Transform(ctx context.Context, root string, paths archive.ExportPaths) (*instagram.Result, error)
}

// ProfileSaver persists a fully transformed profile.
type ProfileSaver interface {
	SaveProfile(profile *entities.Profile) error
}

// SessionRecorder keeps a history of import attempts.
type SessionRecorder interface {
	Start(archiveName string) (*entities.ImportSession, error)
	Finish(session *entities.ImportSession) error
}

// Deps are the collaborators shared by every import.
type Deps struct {
	Fs          afero.Fs
	Extractor   Extractor
	Transformer Transformer
	Saver       ProfileSaver
	Sessions    SessionRecorder // optional
}

// ArchiveImporter runs one archive through the pipeline per call. It keeps no
// state between calls.
type ArchiveImporter struct {
	picker Picker
	deps   Deps
	now    func() time.Time
}

func NewArchiveImporter(picker Picker, deps Deps) *ArchiveImporter {
	return &ArchiveImporter{
		picker: picker,
		deps:   deps,
		now:    time.Now,
	}
}

// importRun tracks the progress of a single ImportArchive call.
type importRun struct {
	stage   Stage
	session *entities.ImportSession
}

func (r *importRun) advance(next Stage) {
	log.Printf("[IMPORT] Stage %s -> %s", r.stage, next)
	r.stage = next
}

// ImportArchive acquires, extracts, discovers, transforms and persists one
// archive. The scratch directory is removed before it returns.
func (i *ArchiveImporter) ImportArchive(ctx context.Context) ImportResult {
	run := &importRun{stage: StageIdle}

	run.advance(StageAcquiring)
	selection, err := i.picker.Pick(ctx)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			log.Printf("[IMPORT] Archive selection canceled")
			result := ImportResult{Cancelled: true, Error: MsgCancelled, Stage: run.stage}
			i.recordCancelled(selection.Name)
			return result
		}
		return i.fail(run, err, interruptedOr(err, err.Error()))
	}
	log.Printf("[IMPORT] Importing archive %s", selection.Name)
	run.session = i.startSession(selection.Name)

	run.advance(StageExtracting)
	scratchDir, err := i.deps.Extractor.Extract(selection.Path)
	if scratchDir != "" {
		defer i.cleanup(scratchDir)
	}
	if err != nil {
		// The decompressor's own message is the most useful thing to show.
		return i.fail(run, err, err.Error())
	}

	run.advance(StageDiscovering)
	paths, err := archive.Discover(i.deps.Fs, scratchDir)
	if err != nil {
		return i.fail(run, err, err.Error())
	}

	run.advance(StageTransforming)
	transformed, err := i.deps.Transformer.Transform(ctx, scratchDir, paths)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, instagram.ErrParse) {
			msg = MsgParseFailed
		}
		return i.fail(run, err, interruptedOr(err, msg))
	}

	profile := transformed.Profile
	profile.WhenImported = i.now()
	issues := len(transformed.Issues)

	run.advance(StagePersisting)
	if err := i.deps.Saver.SaveProfile(profile); err != nil {
		result := i.fail(run, err, MsgPersistFailed)
		result.Issues = issues
		return result
	}

	run.advance(StageDone)
	log.Printf("[IMPORT] Imported @%s as %s: %d posts, %d media files, %d recovered issues",
		profile.Username, profile.ID, len(profile.Posts), profile.MediaCount(), issues)

	i.finishSession(run.session, func(s *entities.ImportSession) {
		s.Status = entities.ImportStatusSucceeded
		s.Stage = string(StageDone)
		s.ProfileID = profile.ID
		s.PostsImported = len(profile.Posts)
		s.ItemIssues = issues
	})

	return ImportResult{
		Success: true,
		Profile: profile,
		Stage:   StageDone,
		Issues:  issues,
	}
}

func (i *ArchiveImporter) fail(run *importRun, err error, msg string) ImportResult {
	log.Printf("[IMPORT] Import failed during %s: %v", run.stage, err)
	stage := run.stage
	run.advance(StageDone)

	i.finishSession(run.session, func(s *entities.ImportSession) {
		s.Status = entities.ImportStatusFailed
		s.Stage = string(stage)
		s.Error = msg
	})

	return ImportResult{Error: msg, Stage: stage}
}

func interruptedOr(err error, msg string) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return MsgInterrupted
	}
	return msg
}

// cleanup removes the scratch directory. A directory that is already gone
// counts as removed; any other failure is logged and otherwise ignored, and
// the leftover becomes fair game for stale scratch cleanup.
func (i *ArchiveImporter) cleanup(dir string) {
	defer i.deps.Extractor.Release(dir)
	if err := i.deps.Fs.RemoveAll(dir); err != nil {
		log.Printf("WARNING: Failed to remove scratch dir %s: %v", dir, err)
		return
	}
	log.Printf("[IMPORT] Removed scratch dir %s", dir)
}

func (i *ArchiveImporter) startSession(name string) *entities.ImportSession {
	if i.deps.Sessions == nil {
		return nil
	}
	session, err := i.deps.Sessions.Start(name)
	if err != nil {
		log.Printf("WARNING: Failed to record import session: %v", err)
		return nil
	}
	return session
}

func (i *ArchiveImporter) finishSession(session *entities.ImportSession, update func(*entities.ImportSession)) {
	if session == nil {
		return
	}
	update(session)
	finished := i.now()
	session.FinishedAt = &finished
	if err := i.deps.Sessions.Finish(session); err != nil {
		log.Printf("WARNING: Failed to update import session %d: %v", session.ID, err)
	}
}

func (i *ArchiveImporter) recordCancelled(name string) {
	session := i.startSession(name)
	i.finishSession(session, func(s *entities.ImportSession) {
		s.Status = entities.ImportStatusCancelled
		s.Stage = string(StageAcquiring)
		s.Error = MsgCancelled
	})
}

// Service starts imports from any picker using one set of collaborators.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Import runs a new ArchiveImporter for picker.
func (s *Service) Import(ctx context.Context, picker Picker) ImportResult {
	return NewArchiveImporter(picker, s.deps).ImportArchive(ctx)
}
