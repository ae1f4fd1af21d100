package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sitestock/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job's last run
type JobStatus string

const (
	JobStatusIdle    JobStatus = "IDLE"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is a unit of background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobState is a snapshot of one registered job
type JobState struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Status    JobStatus  `json:"status"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	Duration  string     `json:"duration,omitempty"`
	LastError string     `json:"lastError,omitempty"`
	NextRunAt *time.Time `json:"nextRunAt,omitempty"`
}

// Config holds scheduler configuration
type Config struct {
	JobTimeout time.Duration
	Location   *time.Location
}

type entry struct {
	job      Job
	schedule string
	id       cron.EntryID
	mu       sync.Mutex
	running  bool
	state    JobState
}

// Scheduler runs jobs on cron schedules. A job never overlaps itself and a
// panicking job is logged instead of crashing the process.
type Scheduler struct {
	cron    *cron.Cron
	config  Config
	logger  *zap.Logger
	mu      sync.RWMutex
	entries map[string]*entry
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler. Schedules use the standard five-field syntax
// plus descriptors such as @daily and @every 1h.
func New(cfg Config, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	log = log.Named("scheduler")
	cl := cronLogger{log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cl),
		),
		config:  cfg,
		logger:  log,
		entries: make(map[string]*entry),
		baseCtx: logger.WithContext(ctx, log),
		cancel:  cancel,
	}
}

// Register schedules job under spec
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name()]; exists {
		return fmt.Errorf("%w: job %s registered twice", ErrInvalidConfig, job.Name())
	}
	e := &entry{job: job, schedule: spec, state: JobState{Name: job.Name(), Schedule: spec, Status: JobStatusIdle}}
	id, err := s.cron.AddFunc(spec, func() { _ = s.run(e) })
	if err != nil {
		return fmt.Errorf("%w: job %s schedule %q: %v", ErrInvalidConfig, job.Name(), spec, err)
	}
	e.id = id
	s.entries[job.Name()] = e
	s.logger.Info("Job registered", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

// Start begins firing schedules
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.entries)))
}

// Stop stops firing schedules and waits for running jobs until ctx ends
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// RunNow runs a job immediately in the caller's goroutine
func (s *Scheduler) RunNow(name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(e)
}

// States returns a snapshot of every job, sorted by name
func (s *Scheduler) States() []JobState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]JobState, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		st := e.state
		e.mu.Unlock()
		if next := s.cron.Entry(e.id).Next; !next.IsZero() {
			st.NextRunAt = &next
		}
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })
	return states
}

func (s *Scheduler) run(e *entry) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		s.logger.Warn("Skipping run, previous run still active", zap.String("job", e.job.Name()))
		return ErrJobRunning
	}
	e.running = true
	started := time.Now()
	e.state.Status = JobStatusRunning
	e.state.LastRunAt = &started
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.config.JobTimeout)
	defer cancel()
	err := invoke(ctx, e.job)
	elapsed := time.Since(started)

	e.mu.Lock()
	e.running = false
	e.state.Duration = elapsed.String()
	if err != nil {
		e.state.Status = JobStatusFailed
		e.state.LastError = err.Error()
	} else {
		e.state.Status = JobStatusSuccess
		e.state.LastError = ""
	}
	e.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", e.job.Name()), zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		s.logger.Info("Job completed", zap.String("job", e.job.Name()), zap.Duration("elapsed", elapsed))
	}
	return err
}

func invoke(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
