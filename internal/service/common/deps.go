//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/cofrn/cofrn-monitor/internal/alert"
	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/repository/alarmcache"
	"github.com/cofrn/cofrn-monitor/internal/repository/heartbeats"
	"github.com/cofrn/cofrn-monitor/internal/tags"
)

// LoadAWS loads the SDK configuration from the default chain, applying the
// configured region and endpoint override.
func LoadAWS(ctx context.Context, cfg config.AWS) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return awsCfg, nil
}

// HeartbeatRepository opens the configured heartbeat store.
func HeartbeatRepository(cfg config.Heartbeat, awsCfg aws.Config) heartbeats.Repository {
	if cfg.Backend == config.BackendDynamoDB {
		return heartbeats.NewDynamoRepository(dynamodb.NewFromConfig(awsCfg), cfg.Table)
	}

	return heartbeats.NewFileRepository(cfg.File)
}

// AlarmCache opens the configured alarm cache store. The returned close
// function releases connections and is never nil.
func AlarmCache(
	ctx context.Context,
	cfg config.Alarms,
	awsCfg aws.Config,
) (alarmcache.Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendS3:
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = awsCfg.BaseEndpoint != nil
		})

		return alarmcache.NewS3Repository(client, cfg.Bucket, cfg.Key), noop, nil
	case config.BackendRedis:
		client, err := alarmcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, noop, err
		}

		return alarmcache.NewRedisRepository(client, cfg.RedisKey), client.Close, nil
	default:
		return alarmcache.NewFileRepository(cfg.File), noop, nil
	}
}

// Alerts builds the alert dispatcher. The SES client is only created when a
// provider list names it.
func Alerts(ctx context.Context, cfg config.Alerts, awsCfg aws.Config) (*alert.Dispatcher, error) {
	var ses alert.SESAPI
	if usesProvider(cfg, alert.ProviderSES) {
		ses = sesv2.NewFromConfig(awsCfg)
	}

	return alert.NewFromConfig(ctx, cfg, ses)
}

// TagResolver builds the alarm category resolver. Without an AWS region every
// alarm gets the default category.
func TagResolver(cfg config.Alarms, awsCfg aws.Config) *tags.Resolver {
	var client tags.CloudWatchAPI
	if awsCfg.Region != "" {
		client = cloudwatch.NewFromConfig(awsCfg)
	}

	return tags.NewResolver(client, cfg.TagKey, cfg.DefaultCategory)
}

func usesProvider(cfg config.Alerts, name string) bool {
	if cfg.Provider == name {
		return true
	}

	for _, fallback := range cfg.Fallback {
		if fallback == name {
			return true
		}
	}

	return false
}
