package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/service/common"
)

// Options controls the alarm-notifier process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Lambda serves invocations as an AWS Lambda handler.
	Lambda bool
	// EventFile is a CloudWatch event JSON file to process once.
	// Without it (and outside Lambda) the run is a sweep only.
	EventFile string
}

// Run loads configuration and handles one event, one sweep, or every Lambda invocation.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if !logger.Configure(cfg.Log.Level, logger.Options{Format: cfg.Log.Format, File: cfg.Log.File}) {
		logger.WarnKV(ctx, "Unknown log level, keeping default", "level", cfg.Log.Level)
	}

	// Name the logger after Configure so ctx carries the configured sinks.
	ctx = logger.WithName(ctx, "alarm-notifier")

	svc, closeFn, err := NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		_ = closeFn()
	}()

	if opts.Lambda {
		lambda.StartWithOptions(svc.HandleCloudWatchEvent, lambda.WithContext(ctx))
		return nil
	}

	event := events.CloudWatchEvent{DetailType: "Scheduled Event"}

	if opts.EventFile != "" {
		if event, err = readEvent(opts.EventFile); err != nil {
			return err
		}
	}

	result, err := svc.HandleCloudWatchEvent(ctx, event)
	if result != nil {
		logger.InfoKV(ctx, "Alarm run finished", "notices", len(result.Notices), "saved", result.Saved)
	}

	return err
}

// NewFromConfig builds a Service with the configured cache, alerts and tag
// lookup. The returned close function is never nil.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, func() error, error) {
	noop := func() error { return nil }

	awsCfg, err := common.LoadAWS(ctx, cfg.AWS)
	if err != nil {
		return nil, noop, err
	}

	dispatcher, err := common.Alerts(ctx, cfg.Alerts, awsCfg)
	if err != nil {
		return nil, noop, err
	}

	repo, closeFn, err := common.AlarmCache(ctx, cfg.Alarms, awsCfg)
	if err != nil {
		return nil, noop, err
	}

	resolver := common.TagResolver(cfg.Alarms, awsCfg)

	return NewService(repo, dispatcher, resolver, cfg.Alarms, opts...), closeFn, nil
}

// HandleCloudWatchEvent handles a state change event, or sweeps for any other event.
// INSUFFICIENT_DATA changes are logged and treated as a sweep.
func (s *Service) HandleCloudWatchEvent(ctx context.Context, event events.CloudWatchEvent) (*Result, error) {
	if event.ID != "" {
		ctx = logger.WithKV(ctx, "event_id", event.ID)
	}

	parsed, err := FromCloudWatch(ctx, event)

	switch {
	case errors.Is(err, ErrIgnoredState):
		logger.InfoKV(ctx, "Ignoring alarm state", "detail_type", event.DetailType)
	case err != nil:
		return nil, err
	}

	return s.Handle(ctx, parsed)
}

// Loop sweeps every interval until ctx is canceled.
func (s *Service) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	logger.InfoKV(ctx, "Sweeping alarm recoveries", "interval", interval.String(), "min_okay_time", s.minOkay.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				logger.ErrorKV(ctx, "Alarm sweep failed", "error", err)
			}
		}
	}
}

func readEvent(path string) (events.CloudWatchEvent, error) {
	var event events.CloudWatchEvent

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return event, fmt.Errorf("read event file: %w", err)
	}

	if err = json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("decode event file: %w", err)
	}

	return event, nil
}
