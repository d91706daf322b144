package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/logger"
	"github.com/cofrn/cofrn-monitor/internal/service/common"
)

// Options controls the heartbeat-monitor process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Interval repeats the check on a ticker when positive.
	Interval time.Duration
	// Lambda serves the check as an AWS Lambda handler.
	Lambda bool
}

// DefaultInterval is used by Loop when no interval is given.
const DefaultInterval = time.Minute

// Run loads configuration and performs the check once, on an interval, or
// for every Lambda invocation.
func Run(ctx context.Context, opts *Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if !logger.Configure(cfg.Log.Level, logger.Options{Format: cfg.Log.Format, File: cfg.Log.File}) {
		logger.WarnKV(ctx, "Unknown log level, keeping default", "level", cfg.Log.Level)
	}

	// Name the logger after Configure so ctx carries the configured sinks.
	ctx = logger.WithName(ctx, "heartbeat-monitor")

	svc, err := NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	switch {
	case opts.Lambda:
		lambda.StartWithOptions(svc.HandleEvent, lambda.WithContext(ctx))
		return nil
	case opts.Interval > 0:
		return svc.Loop(ctx, opts.Interval)
	default:
		report, err := svc.Run(ctx)
		if report != nil {
			logger.InfoKV(ctx, "Heartbeat check finished",
				"recorders", len(report.Records),
				"transitions", len(report.Transitions))
		}

		return err
	}
}

// NewFromConfig builds a Service with the configured store and alert dispatcher.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	awsCfg, err := common.LoadAWS(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	dispatcher, err := common.Alerts(ctx, cfg.Alerts, awsCfg)
	if err != nil {
		return nil, err
	}

	repo := common.HeartbeatRepository(cfg.Heartbeat, awsCfg)

	return NewService(repo, dispatcher, cfg.Heartbeat, opts...), nil
}

// HandleEvent runs one check per scheduled CloudWatch event.
func (s *Service) HandleEvent(ctx context.Context, event events.CloudWatchEvent) error {
	ctx = logger.WithKV(ctx, "event_id", event.ID)
	logger.DebugKV(ctx, "Scheduled heartbeat check", "detail_type", event.DetailType, "time", event.Time)

	_, err := s.Run(ctx)

	return err
}
