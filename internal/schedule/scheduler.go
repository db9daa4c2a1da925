package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"redshift-ddl/internal/domain"
	"redshift-ddl/internal/handler"
)

// Scheduler runs extraction jobs on their cron schedules.
type Scheduler struct {
	cron      *cron.Cron
	extractor handler.Extractor
	jobs      []Job
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID // job name → cron entry
}

// NewScheduler creates a scheduler for jobs.
func NewScheduler(extractor handler.Extractor, jobs []Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:      cron.New(),
		extractor: extractor,
		jobs:      jobs,
		logger:    logger,
		entries:   make(map[string]cron.EntryID),
	}
}

// Start registers every job and starts the cron loop. Runs use ctx, so
// cancelling it aborts in-flight extractions.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		job := j
		entryID, err := s.cron.AddFunc(job.Cron, func() {
			if _, err := s.RunJob(ctx, job); err != nil {
				s.logger.WarnContext(ctx, "scheduled extraction failed", "job", job.Name, "error", err)
			}
		})
		if err != nil {
			return domain.ErrValidation("job %q: invalid cron expression %q: %v", job.Name, job.Cron, err)
		}
		s.entries[job.Name] = entryID
	}

	s.cron.Start()
	for _, job := range s.jobs {
		next := s.cron.Entry(s.entries[job.Name]).Next
		s.logger.Info("scheduled extraction", "job", job.Name, "schedule", job.Cron, "schemas", len(job.Schemas), "next_run", next)
	}
	s.logger.Info("extraction scheduler started", "jobs", len(s.entries))
	return nil
}

// NextRun reports when the named job fires next. It is false for jobs that
// are not registered.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Stop stops the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("extraction scheduler stopped")
}

// RunJob runs one extraction immediately under a fresh invocation ID.
func (s *Scheduler) RunJob(ctx context.Context, job Job) (map[string]string, error) {
	ctx = domain.WithInvocationID(ctx, "schedule-"+job.Name+"-"+domain.NewID())
	out, err := s.extractor.Extract(ctx, job.Connection.Descriptor(), job.Schemas)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "scheduled extraction finished",
		"job", job.Name, "request_id", domain.InvocationIDFromContext(ctx), "schemas", len(out))
	return out, nil
}
