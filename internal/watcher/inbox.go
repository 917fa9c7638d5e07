// Package watcher imports archives dropped into an inbox directory.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/importers"
)

const (
	DefaultDebounce = 500 * time.Millisecond

	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// ArchiveImporter runs one import for the given picker.
type ArchiveImporter interface {
	Import(ctx context.Context, picker importers.Picker) importers.ImportResult
}

// ImportAuditor records the outcome of inbox imports.
type ImportAuditor interface {
	SaveImport(source, archiveName string, result importers.ImportResult) (string, error)
}

// InboxWatcher watches a directory for new .zip archives and imports each
// one. Imported archives move to processed/, rejected ones to failed/.
//
// Writes to the same file within the debounce window collapse into one
// import, so a large archive still being copied in is picked up only once the
// copy settles.
type InboxWatcher struct {
	fs       afero.Fs
	dir      string
	importer ArchiveImporter
	auditor  ImportAuditor
	debounce time.Duration

	pending chan string

	debounceMu sync.Mutex
	timers     map[string]*time.Timer
	fired      sync.WaitGroup // timers scheduled and not yet done handing off their path
}

func NewInboxWatcher(fs afero.Fs, dir string, importer ArchiveImporter, auditor ImportAuditor) *InboxWatcher {
	return &InboxWatcher{
		fs:       fs,
		dir:      dir,
		importer: importer,
		auditor:  auditor,
		debounce: DefaultDebounce,
		pending:  make(chan string, 64),
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches the inbox until ctx is done. Archives already waiting in the
// inbox are imported first. Imports run one at a time.
func (w *InboxWatcher) Run(ctx context.Context) error {
	for _, sub := range []string{"", ProcessedDir, FailedDir} {
		if err := w.fs.MkdirAll(filepath.Join(w.dir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	log.Printf("[WATCH] Watching %s for Instagram archives", w.dir)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.importLoop(ctx)
	}()

	w.enqueueExisting(ctx)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			wg.Wait()
			w.fired.Wait()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				wg.Wait()
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && isArchive(event.Name) {
				w.debounced(ctx, event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				wg.Wait()
				return nil
			}
			log.Printf("WARNING: inbox watcher error: %v", err)
		}
	}
}

func (w *InboxWatcher) enqueueExisting(ctx context.Context) {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		log.Printf("WARNING: Failed to list inbox %s: %v", w.dir, err)
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && isArchive(entry.Name()) {
			w.debounced(ctx, filepath.Join(w.dir, entry.Name()))
		}
	}
}

// debounced schedules path for import once no event for it arrived for the
// debounce window. A path whose window closes after ctx is done is dropped;
// the archive stays in the inbox for the next run.
func (w *InboxWatcher) debounced(ctx context.Context, path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.timers[path]; ok && timer.Stop() {
		w.fired.Done()
	}
	w.fired.Add(1)
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		defer w.fired.Done()
		w.debounceMu.Lock()
		delete(w.timers, path)
		w.debounceMu.Unlock()

		select {
		case w.pending <- path:
		case <-ctx.Done():
		}
	})
}

func (w *InboxWatcher) stopTimers() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	for path, timer := range w.timers {
		if timer.Stop() {
			w.fired.Done()
		}
		delete(w.timers, path)
	}
}

func (w *InboxWatcher) importLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.pending:
			w.process(ctx, path)
		}
	}
}

// process imports one archive and files it under processed/ or failed/.
func (w *InboxWatcher) process(ctx context.Context, path string) importers.ImportResult {
	if _, err := w.fs.Stat(path); err != nil {
		// Moved or deleted while we waited.
		return importers.ImportResult{}
	}

	name := filepath.Base(path)
	log.Printf("[WATCH] Importing %s", name)
	result := w.importer.Import(ctx, importers.FilePicker{Path: path, Name: name})

	if w.auditor != nil {
		if _, err := w.auditor.SaveImport("watch", name, result); err != nil {
			log.Printf("WARNING: Failed to save import audit: %v", err)
		}
	}

	if !result.Success && ctx.Err() != nil {
		// Shutting down; leave the archive for the next run.
		log.Printf("[WATCH] Import of %s interrupted, leaving it in the inbox", name)
		return result
	}

	target := FailedDir
	if result.Success {
		target = ProcessedDir
		log.Printf("[WATCH] Imported %s as %s", name, result.Profile.ID)
	} else {
		log.Printf("[WATCH] Import of %s failed: %s", name, result.Error)
	}

	dest := filepath.Join(w.dir, target, time.Now().Format("20060102-150405")+"_"+name)
	if err := w.fs.Rename(path, dest); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: Failed to move %s to %s: %v", name, target, err)
	}
	return result
}

func isArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}
