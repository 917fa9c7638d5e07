package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/mrlokans/companion/internal/audit"
	"github.com/mrlokans/companion/internal/config"
	"github.com/mrlokans/companion/internal/database"
	http_controllers "github.com/mrlokans/companion/internal/http"
	"github.com/mrlokans/companion/internal/scheduler"
	"github.com/mrlokans/companion/internal/tasks"
	"github.com/mrlokans/companion/internal/watcher"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// checkWritableDir creates dir if needed and verifies files can be written
// into it by touching and removing an empty file.
func checkWritableDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("directory %s cannot be created: %w", dir, err)
	}
	probe, err := afero.TempFile(fs, dir, ".companion-probe-")
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	return fs.Remove(probe.Name())
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// kill (no param) default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Companion v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	fs := afero.NewOsFs()
	for _, dir := range []string{cfg.Storage.MediaDir, cfg.Storage.ScratchDir} {
		if err := checkWritableDir(fs, dir); err != nil {
			log.Fatalf("Storage check failed: %v", err)
		}
	}
	log.Printf("Media directory: %s", cfg.Storage.MediaDir)
	log.Printf("Scratch directory: %s", cfg.Storage.ScratchDir)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	stack := NewImportStack(fs, db, ImportOptionsFromConfig(cfg))

	// Create auditor for recording import outcomes
	auditor := audit.NewAuditor(fs, cfg.Audit.Dir)

	// Background work shares one context, cancelled on shutdown
	bgCtx, bgCancel := context.WithCancel(context.Background())

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(tasks.Config{
			DBPath:          cfg.Tasks.DBPath,
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewImportArchiveQueue(fs, stack.Service, auditor),
			tasks.NewCleanupScratchQueue(stack.Extractor),
			tasks.NewPruneMediaQueue(stack.Profiles, stack.Media),
		)

		// Start task workers in background
		go taskClient.Start(bgCtx)

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Maintenance.Schedule, cfg.Maintenance.ScratchRetention)
		if err := maintenance.Start(bgCtx); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
		// Clear whatever a previous run left behind
		maintenance.RunNow()
	} else {
		log.Printf("Task queue disabled: async imports and maintenance are unavailable")
	}

	// Start inbox watcher if configured
	watchDone := make(chan struct{})
	if cfg.Inbox.Dir != "" {
		inbox := watcher.NewInboxWatcher(fs, cfg.Inbox.Dir, stack.Service, auditor)
		go func() {
			defer close(watchDone)
			if err := inbox.Run(bgCtx); err != nil {
				log.Printf("WARNING: Inbox watcher stopped: %v", err)
			}
		}()
	} else {
		close(watchDone)
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Importer:       stack.Service,
		Profiles:       stack.Profiles,
		Sessions:       stack.Sessions,
		Auditor:        auditor,
		Fs:             fs,
		ScratchDir:     cfg.Storage.ScratchDir,
		MediaDir:       cfg.Storage.MediaDir,
		MaxUploadBytes: cfg.Import.MaxUploadBytes,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
		select {
		case <-watchDone:
		case <-ctx.Done():
			log.Printf("WARNING: Inbox watcher did not stop before the shutdown timeout")
		}
	}

	Serve(router, cfg, onShutdown)
}
