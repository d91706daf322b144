package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/cofrn/cofrn-monitor/internal/alert"
	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/metrics"
	"github.com/cofrn/cofrn-monitor/internal/parallel"
	"github.com/cofrn/cofrn-monitor/internal/repository/heartbeats"
)

// StatusReporter receives the recorder rows after every run.
type StatusReporter interface {
	Update(records []*heartbeat.Record)
}

// Report describes one run.
type Report struct {
	// Records is the state of every row after the run.
	Records []*heartbeat.Record
	// Transitions lists the recorders that flipped.
	Transitions []heartbeat.Transition
	// Message is the alert text; empty when nothing flipped.
	Message string
}

// Service evaluates heartbeat rows.
type Service struct {
	repo        heartbeats.Repository
	sender      alert.Sender
	category    string
	threshold   time.Duration
	concurrency int
	now         func() time.Time
	reporter    StatusReporter
	// mu prevents overlapping runs within the process.
	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStatusReporter publishes recorder status after each run.
func WithStatusReporter(r StatusReporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

var errNoRepository = errors.New("heartbeat repository is not set")

// NewService creates a monitor over repo that alerts through sender.
func NewService(repo heartbeats.Repository, sender alert.Sender, cfg config.Heartbeat, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		sender:      sender,
		category:    cfg.Category,
		threshold:   cfg.Threshold,
		concurrency: cfg.Concurrency,
		now:         time.Now,
	}

	if s.threshold <= 0 {
		s.threshold = config.DefaultHeartbeatThreshold
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run performs one failover check. Persistence and alerting are attempted
// independently; their failures are combined in the returned error, which
// accompanies a non-nil report.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list heartbeats: %w", err)
	}

	now := s.now()
	transitions := heartbeat.Evaluate(records, now, s.threshold)

	report := &Report{
		Records:     records,
		Transitions: transitions,
		Message:     heartbeat.JoinMessages(transitions),
	}

	for _, rec := range records {
		metrics.SetHeartbeatFailed(rec.Server, rec.IsFailed)
	}

	if s.reporter != nil {
		s.reporter.Update(records)
	}

	if len(transitions) == 0 {
		logger.DebugKV(ctx, "No recorder state changes", "recorders", len(records))
		return report, nil
	}

	for _, tr := range transitions {
		metrics.NewHeartbeatTransition(tr.Record.Server, tr.Record.IsFailed)

		logger.InfoKV(ctx, "Recorder state changed",
			"server", tr.Record.Server,
			"is_primary", tr.Record.IsPrimary,
			"is_failed", tr.Record.IsFailed,
			"elapsed", tr.Elapsed.String())
	}

	var (
		wg         sync.WaitGroup
		persistErr error
		alertErr   error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		persistErr = parallel.ForEach(ctx, transitions, s.concurrency, s.persist)
	}()

	go func() {
		defer wg.Done()

		if s.sender == nil {
			return
		}

		if err := s.sender.Send(ctx, s.category, report.Message); err != nil {
			alertErr = fmt.Errorf("send failover alert: %w", err)
		}
	}()

	wg.Wait()

	return report, multierr.Combine(persistErr, alertErr)
}

func (s *Service) persist(ctx context.Context, tr heartbeat.Transition) error {
	if err := s.repo.UpdateState(ctx, tr.Record, tr.WasFailed); err != nil {
		logger.ErrorKV(ctx, "Failed to persist recorder state",
			"server", tr.Record.Server,
			"error", err)

		return fmt.Errorf("update %s: %w", tr.Record.Server, err)
	}

	return nil
}

// Loop runs the check every interval until ctx is canceled. Run errors are
// logged and do not stop the loop.
func (s *Service) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	logger.InfoKV(ctx, "Monitoring heartbeats", "interval", interval.String(), "threshold", s.threshold.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Run(ctx); err != nil {
			logger.ErrorKV(ctx, "Heartbeat check failed", "error", err)
		}

		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
		}
	}
}
