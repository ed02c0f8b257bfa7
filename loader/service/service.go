package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"docsum/extract"
	"docsum/loader/internal"
	"docsum/types"
)

// Ingester runs the upload pipeline for a settled file.
type Ingester interface {
	Ingest(ctx context.Context, filename, mimeType, path string) (*types.Document, error)
}

type Config struct {
	SourceDir  string
	ArchiveDir string
	BadDir     string
	SettleTime time.Duration
}

func ConfigFromEnv() Config {
	settleSecs, _ := strconv.Atoi(os.Getenv("LOADER_SETTLE_SECS"))
	if settleSecs <= 0 {
		settleSecs = 3
	}
	return Config{
		SourceDir:  os.Getenv("LOADER_SOURCE_DIR"),
		ArchiveDir: os.Getenv("LOADER_ARCHIVE_DIR"),
		BadDir:     os.Getenv("LOADER_BAD_DIR"),
		SettleTime: time.Duration(settleSecs) * time.Second,
	}
}

// Service ingests documents dropped into the source folder, archiving
// processed files and quarantining failures.
type Service struct {
	logger   *slog.Logger
	pipeline Ingester
	watcher  *internal.DirWatcher
	cfg      Config
}

func New(pipeline Ingester, cfg Config) *Service {
	return &Service{
		logger:   slog.Default(),
		pipeline: pipeline,
		watcher:  internal.NewDirWatcher(cfg.SourceDir, cfg.SettleTime),
		cfg:      cfg,
	}
}

func (s *Service) Stop() {
	s.logger.Info("loader service stopped")
}

func (s *Service) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fileChan := make(chan string, 10)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(fileChan)
		if err := s.watcher.Watch(ctx, fileChan); err != nil {
			s.logger.Error("watcher failed", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.processFiles(ctx, fileChan)
	}()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)

	<-sigch
	log.Println("Received shutdown signal, shutting down gracefully...")

	cancel()
	signal.Stop(sigch)
	close(sigch)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All goroutines stopped successfully")
	case <-shutdownCtx.Done():
		log.Println("Timeout waiting for goroutines to stop, forcing shutdown...")
	}

	s.Stop()
}

func (s *Service) processFiles(ctx context.Context, fileChan <-chan string) {
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("file processor stopped")
			return
		case path, ok := <-fileChan:
			if !ok {
				return
			}
			s.processFile(ctx, path)
		}
	}
}

func (s *Service) processFile(ctx context.Context, path string) {
	filename := filepath.Base(path)
	mimeType := extract.TypeByExtension(filename)
	s.logger.Info("processing file", "file", filename, "type", mimeType)

	doc, err := s.pipeline.Ingest(ctx, filename, mimeType, path)
	if err != nil {
		s.logger.Error("ingest failed", "file", filename, "error", err)
		if moveErr := internal.MoveTo(path, s.cfg.BadDir); moveErr != nil {
			s.logger.Error("error moving file to bad dir", "file", filename, "error", moveErr)
		}
		return
	}

	s.logger.Info("document ingested", "file", filename, "chunks", doc.ChunkCount, "classification", doc.Classification)
	if err := internal.MoveTo(path, s.cfg.ArchiveDir); err != nil {
		s.logger.Error("error moving file to archive", "file", filename, "error", err)
	}
}
