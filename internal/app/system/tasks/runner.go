// Package tasks runs the console's periodic maintenance jobs and reports
// their state to the health endpoint.
package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a periodic task. A zero Timeout bounds a run only by shutdown.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// JobStatus describes the latest run of a job.
type JobStatus struct {
	Name      string        `json:"name"`
	Running   bool          `json:"running"`
	Runs      int64         `json:"runs"`
	LastStart time.Time     `json:"last_start,omitempty"`
	LastTook  time.Duration `json:"last_took_ns"`
	LastError string        `json:"last_error,omitempty"`
}

// Runner runs each registered job at Start and then every Interval.
type Runner struct {
	logger *zap.Logger
	wg     sync.WaitGroup
	stop   context.CancelFunc

	mu   sync.Mutex
	jobs map[string]Job
	last map[string]JobStatus
}

func New(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, jobs: map[string]Job{}, last: map[string]JobStatus{}}
}

// Register adds job, replacing any job of the same name. Jobs registered
// after Start are not scheduled.
func (r *Runner) Register(job Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.Name] = job
	r.last[job.Name] = JobStatus{Name: job.Name}
}

func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.stop = cancel

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.schedule(ctx, job)
	}
	r.logger.Info("task runner started", zap.Int("jobs", len(r.jobs)))
}

// Stop cancels the jobs and waits for running ones to return. It gives up
// when ctx ends and names the jobs still running.
func (r *Runner) Stop(ctx context.Context) error {
	if r.stop != nil {
		r.stop()
	}
	idle := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		var busy []string
		for _, s := range r.Status() {
			if s.Running {
				busy = append(busy, s.Name)
			}
		}
		r.logger.Warn("task runner stop timed out", zap.Strings("running", busy))
		return ctx.Err()
	}
}

// Status lists every job by name.
func (r *Runner) Status() []JobStatus {
	r.mu.Lock()
	out := make([]JobStatus, 0, len(r.last))
	for _, s := range r.last {
		out = append(out, s)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Runner) schedule(ctx context.Context, job Job) {
	defer r.wg.Done()

	next := time.NewTimer(0)
	defer next.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-next.C:
			r.run(ctx, job)
			next.Reset(job.Interval)
		}
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	start := time.Now()
	r.update(job.Name, func(s *JobStatus) {
		s.Running = true
		s.LastStart = start
	})

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}
	err := job.Run(ctx)
	took := time.Since(start)

	r.update(job.Name, func(s *JobStatus) {
		s.Running = false
		s.Runs++
		s.LastTook = took
		s.LastError = ""
		if err != nil {
			s.LastError = err.Error()
		}
	})

	log := r.logger.With(zap.String("job", job.Name), zap.Duration("took", took))
	switch {
	case err == nil:
		log.Debug("job done")
	case errors.Is(err, context.Canceled):
		log.Debug("job cancelled")
	default:
		log.Error("job failed", zap.Error(err))
	}
}

func (r *Runner) update(name string, fn func(*JobStatus)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.last[name]
	s.Name = name
	fn(&s)
	r.last[name] = s
}
