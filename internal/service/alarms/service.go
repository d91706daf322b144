package alarms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/cofrn/cofrn-monitor/internal/alert"
	"github.com/cofrn/cofrn-monitor/internal/config"
	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/metrics"
	"github.com/cofrn/cofrn-monitor/internal/parallel"
	"github.com/cofrn/cofrn-monitor/internal/repository/alarmcache"
)

// CategoryResolver returns the alert category of an alarm.
type CategoryResolver interface {
	Category(ctx context.Context, alarmARN string) string
}

// Notice is one notification sent during an invocation.
type Notice struct {
	Kind     string `json:"kind"`
	Alarm    string `json:"alarm"`
	Category string `json:"category"`
}

// Result describes one invocation.
type Result struct {
	// Notices lists the alarm and recovery notifications sent.
	Notices []Notice `json:"notices"`
	// Saved reports whether the cache was written.
	Saved bool `json:"saved"`
}

// Service handles alarm events and recovery sweeps.
type Service struct {
	repo            alarmcache.Repository
	sender          alert.Sender
	resolver        CategoryResolver
	minOkay         time.Duration
	defaultCategory string
	now             func() time.Time
	// mu serialises read-modify-write cycles within the process.
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

var (
	errNoRepository = errors.New("alarm cache repository is not set")
	errUnknownState = errors.New("unknown alarm state")
)

// NewService creates a de-duplicator over repo.
func NewService(
	repo alarmcache.Repository,
	sender alert.Sender,
	resolver CategoryResolver,
	cfg config.Alarms,
	opts ...Option,
) *Service {
	s := &Service{
		repo:            repo,
		sender:          sender,
		resolver:        resolver,
		minOkay:         cfg.MinOkayTime,
		defaultCategory: cfg.DefaultCategory,
		now:             time.Now,
	}

	if s.minOkay <= 0 {
		s.minOkay = config.DefaultMinOkayTime
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handle processes event, when not nil, and then sweeps for due recoveries.
// The cache is saved once, and only if something changed. Failed
// notifications and a failed save are combined in the returned error.
func (s *Service) Handle(ctx context.Context, event *Event) (*Result, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, dirty := s.load(ctx)
	now := s.now()
	result := new(Result)

	var errs error

	if event != nil {
		changed, err := s.apply(ctx, doc.Cache, event, now, result)
		dirty = dirty || changed
		errs = multierr.Append(errs, err)
	}

	swept, err := s.sweep(ctx, doc.Cache, now, result)
	dirty = dirty || swept
	errs = multierr.Append(errs, err)

	if dirty {
		if err = s.repo.Save(ctx, doc); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("save alarm cache: %w", err))
		} else {
			result.Saved = true
		}
	}

	return result, errs
}

// Sweep only looks for due recoveries.
func (s *Service) Sweep(ctx context.Context) (*Result, error) {
	return s.Handle(ctx, nil)
}

// Snapshot returns a copy of the stored cache.
func (s *Service) Snapshot(ctx context.Context) (domain.Cache, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}

	doc, err := s.repo.Load(ctx)

	switch {
	case errors.Is(err, alarmcache.ErrNotFound), errors.Is(err, alarmcache.ErrCorrupt):
		return domain.Cache{}, nil
	case err != nil:
		return nil, fmt.Errorf("load alarm cache: %w", err)
	}

	return doc.Cache.Clone(), nil
}

// load returns the stored document or, on any failure, an empty one. An
// unreadable stored copy is replaced on the next save, so the second result
// asks the caller to save even without changes.
func (s *Service) load(ctx context.Context) (*domain.Document, bool) {
	doc, err := s.repo.Load(ctx)

	switch {
	case err == nil:
		return doc, false
	case errors.Is(err, alarmcache.ErrNotFound):
		logger.Debug(ctx, "No alarm cache yet, starting empty")
	case errors.Is(err, alarmcache.ErrCorrupt) && doc != nil:
		logger.ErrorKV(ctx, "Alarm cache is unreadable, replacing it", "error", err)
		return doc, true
	default:
		logger.ErrorKV(ctx, "Failed to load alarm cache, starting empty", "error", err)
	}

	return &domain.Document{Cache: make(domain.Cache)}, false
}

func (s *Service) apply(
	ctx context.Context,
	cache domain.Cache,
	event *Event,
	now time.Time,
	result *Result,
) (bool, error) {
	ctx = logger.WithKV(ctx, "alarm", event.AlarmName)

	if event.State != domain.TransitionAlarm && event.State != domain.TransitionOK {
		return false, fmt.Errorf("%w: %q", errUnknownState, event.State)
	}

	metrics.NewAlarmEvent(string(event.State))

	logger.InfoKV(ctx, "Alarm state change",
		"state", event.State,
		"reason", event.Reason,
		"changed_at", event.Time)

	entry, ok := cache[event.AlarmName]
	if !ok || entry == nil {
		entry = domain.NewEntry(s.category(ctx, event.AlarmARN))
		cache[event.AlarmName] = entry
	}

	if event.State == domain.TransitionOK {
		entry.MarkOK(now)
		return true, nil
	}

	notify := entry.ShouldNotifyAlarm()
	entry.MarkAlarm(now, event.Reason)

	if !notify {
		logger.InfoKV(ctx, "Alarm suppressed, recovery not announced yet", "state", entry.State().String())
		return true, nil
	}

	return true, s.notify(ctx, metrics.KindAlarm, event.AlarmName, entry.Type, alarmText(event), result)
}

// sweep sends every due recovery. An entry is stamped only when its notice went out.
func (s *Service) sweep(ctx context.Context, cache domain.Cache, now time.Time, result *Result) (bool, error) {
	var due []string

	for _, name := range cache.Names() {
		if cache[name].RecoveryDue(now, s.minOkay) {
			due = append(due, name)
		}
	}

	if len(due) == 0 {
		return false, nil
	}

	var (
		mu   sync.Mutex
		sent int
	)

	err := parallel.ForEach(ctx, due, config.DefaultConcurrency, func(ctx context.Context, name string) error {
		entry := cache[name]
		ctx = logger.WithKV(ctx, "alarm", name)

		var notices Result
		if err := s.notify(ctx, metrics.KindRecovery, name, entry.Type, recoveryText(name, entry), &notices); err != nil {
			return err
		}

		entry.MarkRecoverySent(now)

		mu.Lock()
		sent++
		result.Notices = append(result.Notices, notices.Notices...)
		mu.Unlock()

		return nil
	})

	return sent > 0, err
}

func (s *Service) notify(ctx context.Context, kind, name, category, text string, result *Result) error {
	if s.sender != nil {
		if err := s.sender.Send(ctx, category, text); err != nil {
			logger.ErrorKV(ctx, "Failed to send alarm notification", "kind", kind, "error", err)
			return fmt.Errorf("send %s notice for %s: %w", kind, name, err)
		}
	}

	metrics.NewAlarmNotification(kind)
	logger.InfoKV(ctx, "Alarm notification sent", "kind", kind, "category", category)

	result.Notices = append(result.Notices, Notice{Kind: kind, Alarm: name, Category: category})

	return nil
}

func (s *Service) category(ctx context.Context, alarmARN string) string {
	if s.resolver == nil {
		return s.defaultCategory
	}

	return s.resolver.Category(ctx, alarmARN)
}

func alarmText(event *Event) string {
	text := "ALARM: " + event.AlarmName
	if event.Reason != "" {
		text += "\n" + event.Reason
	}

	return text
}

func recoveryText(name string, entry *domain.Entry) string {
	text := "OK: " + name + " has recovered"
	if entry.LastReason != nil {
		text += "\nLast alarm reason: " + *entry.LastReason
	}

	return text
}
