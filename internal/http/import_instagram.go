package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/archive"
	"github.com/mrlokans/companion/internal/importers"
	"github.com/mrlokans/companion/internal/tasks"
)

const archiveFormField = "archive"

// InstagramImportController accepts Instagram archive uploads.
type InstagramImportController struct {
	importer   ArchiveImporter
	auditor    ImportAuditor
	queue      TaskQueue
	fs         afero.Fs
	scratchDir string
	maxBytes   int64
}

func NewInstagramImportController(cfg RouterConfig) *InstagramImportController {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &InstagramImportController{
		importer:   cfg.Importer,
		auditor:    cfg.Auditor,
		queue:      cfg.TaskQueue,
		fs:         fs,
		scratchDir: cfg.ScratchDir,
		maxBytes:   cfg.MaxUploadBytes,
	}
}

// Import handles POST /api/import/instagram
//
// The archive is read from the multipart field "archive". By default the
// import runs before the response is written. With ?async=true the archive
// is queued as a background task and the task ID is returned.
func (ic *InstagramImportController) Import(c *gin.Context) {
	if ic.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxBytes)
	}

	header, err := c.FormFile(archiveFormField)
	if err != nil && !isMissingUpload(err) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("archive exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondBadRequest(c, "invalid multipart upload: "+err.Error())
		return
	}

	if header == nil || header.Filename == "" {
		// Nothing was chosen; let the importer record the cancelled attempt.
		result := ic.importer.Import(c.Request.Context(), importers.FilePicker{})
		ic.audit("", result)
		c.JSON(http.StatusBadRequest, result)
		return
	}

	name := filepath.Base(header.Filename)
	spooled, err := ic.spool(header)
	if err != nil {
		respondInternalError(c, err, "spool upload")
		return
	}

	if c.Query("async") == "true" {
		ic.enqueue(c, spooled, name)
		return
	}

	defer ic.removeSpooled(spooled)
	result := ic.importer.Import(c.Request.Context(), importers.FilePicker{Path: spooled, Name: name})
	ic.audit(name, result)

	status := http.StatusOK
	switch {
	case result.Cancelled:
		status = http.StatusBadRequest
	case !result.Success:
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (ic *InstagramImportController) enqueue(c *gin.Context, spooled, name string) {
	if ic.queue == nil {
		ic.removeSpooled(spooled)
		respondError(c, http.StatusServiceUnavailable, "task queue is not enabled")
		return
	}

	taskID, err := ic.queue.Enqueue(tasks.ImportArchiveTask{ArchivePath: spooled, ArchiveName: name})
	if err != nil {
		ic.removeSpooled(spooled)
		respondInternalError(c, err, "enqueue import")
		return
	}

	log.Printf("[IMPORT] Queued %s as task %s", name, taskID)
	respondAccepted(c, "Import queued", gin.H{
		"task_id":      taskID,
		"archive_name": name,
	})
}

// spool copies the upload into the scratch root where the background task
// and the stale scratch cleanup can find it.
func (ic *InstagramImportController) spool(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	if err := ic.fs.MkdirAll(ic.scratchDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}

	dst, err := afero.TempFile(ic.fs, ic.scratchDir, archive.UploadPrefix+"*.zip")
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		ic.removeSpooled(dst.Name())
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	if err := dst.Close(); err != nil {
		ic.removeSpooled(dst.Name())
		return "", fmt.Errorf("failed to close spool file: %w", err)
	}
	return dst.Name(), nil
}

func (ic *InstagramImportController) removeSpooled(path string) {
	if err := ic.fs.Remove(path); err != nil {
		log.Printf("WARNING: Failed to remove spooled upload %s: %v", path, err)
	}
}

func (ic *InstagramImportController) audit(name string, result importers.ImportResult) {
	if ic.auditor == nil {
		return
	}
	if _, err := ic.auditor.SaveImport("upload", name, result); err != nil {
		log.Printf("WARNING: Failed to save import audit: %v", err)
	}
}

func isMissingUpload(err error) bool {
	return errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)
}
