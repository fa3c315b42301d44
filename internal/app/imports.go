package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scout/internal/adapters/csvsource"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// Import parses the CSV at path, persists it when a store is open and
// publishes it as the next snapshot. An empty path selects the configured
// dataset.
func (s *Service) Import(ctx context.Context, path string) (model.ImportResult, error) {
	path, err := s.resolveSource(path)
	if err != nil {
		return model.ImportResult{}, err
	}

	s.importMu.Lock()
	defer s.importMu.Unlock()

	start := time.Now()
	report, err := csvsource.ReadFile(ctx, path)
	if err != nil {
		metrics.RecordErrorByComponent("import", "parse")
		return model.ImportResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	// An empty file would wipe the store and the snapshot.
	if len(report.Players) == 0 {
		metrics.RecordErrorByComponent("import", "empty")
		return model.ImportResult{}, fmt.Errorf("%w: %s", ErrEmptyImport, path)
	}

	if db := s.db.Load(); db != nil {
		if err := db.ReplaceAll(ctx, report.Players); err != nil {
			metrics.RecordErrorByComponent("import", "persist")
			return model.ImportResult{}, fmt.Errorf("persist %s: %w", path, err)
		}
	}
	if err := s.snapshots.ReplaceAll(ctx, report.Players); err != nil {
		metrics.RecordErrorByComponent("import", "publish")
		return model.ImportResult{}, fmt.Errorf("publish %s: %w", path, err)
	}

	res := model.ImportResult{
		Imported:   len(report.Players),
		Skipped:    report.Skipped,
		Generation: s.snapshots.Snapshot().Generation(),
	}
	metrics.RecordImportRows(res.Imported, res.Skipped)
	s.logger.Info(ctx, "players imported",
		logger.String("path", path),
		logger.Int("imported", res.Imported),
		logger.Int("skipped", res.Skipped),
		logger.Any("generation", res.Generation),
		logger.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// SubmitImport queues a background import of path and returns the job.
func (s *Service) SubmitImport(ctx context.Context, path string) (model.ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.ImportJob{}, ErrNotStarted
	}
	path, err := s.resolveSource(path)
	if err != nil {
		return model.ImportJob{}, err
	}

	job := model.ImportJob{
		ID:          uuid.NewString(),
		Source:      path,
		SubmittedAt: time.Now(),
	}
	// Recorded before enqueue so the worker's running state cannot be
	// overwritten by a late queued state.
	s.tracker.Record(model.ImportStatus{Job: job, State: model.ImportQueued})
	if !s.queue.Enqueue(ctx, job) {
		s.tracker.Record(model.ImportStatus{
			Job:        job,
			State:      model.ImportFailed,
			Error:      ErrQueueFull.Error(),
			FinishedAt: time.Now(),
		})
		return model.ImportJob{}, ErrQueueFull
	}

	s.logger.Info(ctx, "import queued",
		logger.String("job", job.ID),
		logger.String("path", path),
	)
	return job, nil
}

// ImportStatus returns the latest known state of a background import.
func (s *Service) ImportStatus(ctx context.Context, id string) (model.ImportStatus, error) {
	st, ok := s.tracker.Get(id)
	if !ok {
		return model.ImportStatus{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return st, nil
}

// resolveSource maps a requested import path onto a file the service may
// read: the configured dataset, or a file under the import directory.
// Relative paths are taken relative to the import directory.
func (s *Service) resolveSource(path string) (string, error) {
	if path == "" || path == s.csvPath {
		if s.csvPath == "" {
			return "", ErrNoSource
		}
		return s.csvPath, nil
	}
	if s.importDir == "" {
		return "", fmt.Errorf("%w: %s", ErrSourceDenied, path)
	}
	dir, err := filepath.Abs(s.importDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSourceDenied, path)
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	target = filepath.Clean(target)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrSourceDenied, path)
	}
	return target, nil
}
