// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scout/internal/adapters/cache"
	importqueue "github.com/okian/scout/internal/adapters/mq/queue"
	workerpool "github.com/okian/scout/internal/adapters/mq/worker"
	repository "github.com/okian/scout/internal/adapters/repository"
	"github.com/okian/scout/internal/domain/attribute"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/pkg/logger"
	"github.com/okian/scout/pkg/metrics"
)

// jobImporter adapts the service to worker.Importer.
type jobImporter struct {
	s *Service
}

func (a *jobImporter) Import(ctx context.Context, job model.ImportJob) (model.ImportResult, error) {
	return a.s.Import(ctx, job.Source)
}

// Service implements the API dependencies for the scouting system.
type Service struct {
	mu sync.RWMutex

	// Core components
	snapshots *repository.SnapshotStore
	db        atomic.Pointer[repository.SQLiteStore]
	engine    *similarity.Engine
	results   *cache.ResultCache
	queue     importqueue.Queue
	tracker   *workerpool.Tracker
	pool      *workerpool.Pool

	// stopWorkers ends the import worker lifetime, which is independent of
	// the context passed to Start.
	stopWorkers context.CancelFunc

	// importMu keeps the on-disk table and the published snapshot in step.
	importMu sync.Mutex

	// Configuration
	dbPath            string
	csvPath           string
	importDir         string
	importOnStart     bool
	cacheSize         int
	defaultLimit      int
	maxLimit          int
	defaultAttributes []string
	queueSize         int
	importTimeout     time.Duration
	importHistory     int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDBPath persists imports to the SQLite file at path.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithCSVPath sets the dataset used at start and by imports that name no file.
func WithCSVPath(path string) Option {
	return func(s *Service) {
		s.csvPath = path
	}
}

// WithImportDir allows background imports of CSV files under dir. Without
// it only the configured dataset can be imported.
func WithImportDir(dir string) Option {
	return func(s *Service) {
		s.importDir = dir
	}
}

// WithImportOnStart controls whether Start loads the CSV into an empty store.
func WithImportOnStart(enabled bool) Option {
	return func(s *Service) {
		s.importOnStart = enabled
	}
}

// WithCacheSize bounds the similarity result cache. Zero disables it.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithLimits sets the limit used when a query names none and the largest
// limit a query may ask for.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 && maxLimit >= defaultLimit {
			s.defaultLimit = defaultLimit
			s.maxLimit = maxLimit
		}
	}
}

// WithDefaultAttributes sets the attributes compared when a query names none.
func WithDefaultAttributes(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.defaultAttributes = append([]string(nil), names...)
		}
	}
}

// WithQueueSize sets the maximum number of pending import jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithImportTimeout bounds a single background import.
func WithImportTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.importTimeout = d
		}
	}
}

// WithImportHistory sets how many job statuses are remembered.
func WithImportHistory(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.importHistory = n
		}
	}
}

// New constructs a new Service with default configuration. Queries made
// before Start report the data as unavailable.
func New(opts ...Option) *Service {
	s := &Service{
		importOnStart:     true,
		cacheSize:         1024,
		defaultLimit:      similarity.DefaultLimit,
		maxLimit:          100,
		defaultAttributes: attribute.Default(),
		queueSize:         8,
		importTimeout:     5 * time.Minute,
		importHistory:     256,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.engine = similarity.NewEngine(similarity.WithDefaultLimit(s.defaultLimit))
	if results, err := cache.New(s.cacheSize); err == nil {
		s.results = results
	}
	s.snapshots = repository.NewSnapshotStore(repository.WithPublishHook(s.onPublish))
	s.tracker = workerpool.NewTracker(s.importHistory)
	return s
}

// Start opens the store, loads the first snapshot and starts the import worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting scout service...")

	if s.dbPath != "" {
		db, err := repository.Open(ctx, s.dbPath)
		if err != nil {
			return fmt.Errorf("open player store: %w", err)
		}
		if err := s.warm(ctx, db); err != nil {
			_ = db.Close()
			return err
		}
		s.db.Store(db)
	}

	if s.importOnStart && s.csvPath != "" && s.snapshots.Snapshot() == nil {
		if _, err := s.Import(ctx, s.csvPath); err != nil {
			// The service still serves; queries report data unavailable
			// until an import succeeds.
			s.logger.Error(ctx, "initial import failed",
				logger.String("path", s.csvPath),
				logger.Error(err),
			)
		}
	}

	s.queue = importqueue.NewInMemoryQueue(importqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(1, s.queue, &jobImporter{s: s}, s.tracker,
		workerpool.WithJobTimeout(s.importTimeout),
	)
	workerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.stopWorkers = cancel
	s.pool.Start(workerCtx)

	s.started = true
	s.logger.Info(ctx, "scout service started",
		logger.Int("players", s.snapshots.Snapshot().Len()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Bool("persistent", s.db.Load() != nil),
	)

	return nil
}

// warm publishes the players already on disk.
func (s *Service) warm(ctx context.Context, db *repository.SQLiteStore) error {
	players, err := db.All(ctx)
	if err != nil {
		return fmt.Errorf("load stored players: %w", err)
	}
	if len(players) == 0 {
		return nil
	}
	if err := s.snapshots.ReplaceAll(ctx, players); err != nil {
		return fmt.Errorf("publish stored players: %w", err)
	}
	s.logger.Info(ctx, "loaded players from store",
		logger.String("path", s.dbPath),
		logger.Int("players", len(players)),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping scout service...")

	if s.pool != nil {
		if err := s.pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "import worker did not stop cleanly", logger.Error(err))
		}
	}

	if s.stopWorkers != nil {
		s.stopWorkers()
		s.stopWorkers = nil
	}

	if db := s.db.Swap(nil); db != nil {
		if err := db.Close(); err != nil {
			s.logger.Warn(ctx, "closing player store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "scout service stopped")
}

// onPublish runs after every new snapshot.
func (s *Service) onPublish(pop *model.Population) {
	s.results.Purge()
	s.logger.Debug(context.Background(), "snapshot published",
		logger.Int("players", pop.Len()),
		logger.Any("generation", pop.Generation()),
	)
}

// Stats is the payload of the stats endpoint.
type Stats struct {
	Started        bool      `json:"started"`
	Players        int       `json:"players"`
	Generation     uint64    `json:"generation"`
	LoadedAt       time.Time `json:"loadedAt"`
	Persistent     bool      `json:"persistent"`
	CacheEntries   int       `json:"cacheEntries"`
	CacheSize      int       `json:"cacheSize"`
	QueueLength    int       `json:"queueLength"`
	QueueSize      int       `json:"queueSize"`
	DefaultLimit   int       `json:"defaultLimit"`
	MaxLimit       int       `json:"maxLimit"`
	DefaultAttrs   []string  `json:"defaultAttributes"`
	TrackedImports int       `json:"trackedImports"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pop := s.snapshots.Snapshot()
	stats := Stats{
		Started:        s.started,
		Players:        pop.Len(),
		Generation:     pop.Generation(),
		LoadedAt:       pop.LoadedAt(),
		Persistent:     s.db.Load() != nil,
		CacheEntries:   s.results.Len(),
		CacheSize:      s.cacheSize,
		QueueSize:      s.queueSize,
		DefaultLimit:   s.defaultLimit,
		MaxLimit:       s.maxLimit,
		DefaultAttrs:   append([]string(nil), s.defaultAttributes...),
		TrackedImports: s.tracker.Len(),
	}

	if s.started {
		stats.QueueLength = s.queue.Len(context.Background())
		metrics.UpdateQueueSize(stats.QueueLength)
	}
	metrics.UpdatePopulation(stats.Players, stats.Generation)

	return stats
}
