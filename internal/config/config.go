package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the COFRN binaries.
// It is built once at startup and passed to every component.
type Config struct {
	// AWS holds the SDK settings shared by every AWS-backed store.
	AWS AWS `yaml:"aws" envPrefix:"AWS_"`
	// Heartbeat configures the recorder failover monitor.
	Heartbeat Heartbeat `yaml:"heartbeat" envPrefix:"HEARTBEAT_"`
	// Alarms configures the CloudWatch alarm de-duplicator.
	Alarms Alarms `yaml:"alarms" envPrefix:"ALARMS_"`
	// Alerts configures outbound alert delivery.
	Alerts Alerts `yaml:"alerts" envPrefix:"ALERTS_"`
	// HTTP configures the API listener.
	HTTP Listener `yaml:"http" envPrefix:"HTTP_"`
	// GRPC configures the health listener.
	GRPC Listener `yaml:"grpc" envPrefix:"GRPC_"`
	// Log configures the global logger.
	Log Log `yaml:"log" envPrefix:"LOG_"`
}

// AWS holds SDK settings.
type AWS struct {
	// Region is the AWS region; empty means the SDK default chain decides.
	Region string `yaml:"region" env:"REGION"`
	// Endpoint overrides the service endpoint (localstack and similar).
	Endpoint string `yaml:"endpoint" env:"ENDPOINT"`
}

// Heartbeat configures the failover monitor.
type Heartbeat struct {
	// Backend selects the heartbeat store: "dynamodb" or "file" (default).
	Backend string `yaml:"backend" env:"BACKEND"`
	// Table is the DynamoDB table holding heartbeat rows.
	Table string `yaml:"table" env:"TABLE"`
	// File is the JSON file used by the "file" backend.
	File string `yaml:"file" env:"FILE"`
	// Threshold is the heartbeat age after which a recorder counts as failed.
	Threshold time.Duration `yaml:"threshold" env:"THRESHOLD"`
	// Category is the alert category used for failover messages.
	Category string `yaml:"category" env:"CATEGORY"`
	// Concurrency caps parallel row updates.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
	// Interval is how often the API process runs the check.
	Interval time.Duration `yaml:"interval" env:"INTERVAL"`
}

// Alarms configures the alarm de-duplicator.
type Alarms struct {
	// Backend selects the cache store: "s3", "redis" or "file" (default).
	Backend string `yaml:"backend" env:"BACKEND"`
	// Bucket and Key locate the cache document in S3.
	Bucket string `yaml:"bucket" env:"BUCKET"`
	Key    string `yaml:"key" env:"KEY"`
	// File is the JSON file used by the "file" backend.
	File string `yaml:"file" env:"FILE"`
	// RedisAddr and RedisKey locate the cache document in Redis.
	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisKey  string `yaml:"redis_key" env:"REDIS_KEY"`
	// MinOkayTime is the quiet period before a recovery notice is sent.
	MinOkayTime time.Duration `yaml:"min_okay_time" env:"MIN_OKAY_TIME"`
	// TagKey is the alarm tag holding the alert category.
	TagKey string `yaml:"tag_key" env:"TAG_KEY"`
	// DefaultCategory is used when the tag is missing or cannot be read.
	DefaultCategory string `yaml:"default_category" env:"DEFAULT_CATEGORY"`
	// SweepInterval is how often the API process sweeps for pending recoveries.
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SWEEP_INTERVAL"`
}

// Alerts configures outbound alert delivery.
type Alerts struct {
	// Provider is the primary provider name: "ses", "resend" or "log".
	Provider string `yaml:"provider" env:"PROVIDER"`
	// Fallback lists providers tried in order when the primary fails.
	Fallback []string `yaml:"fallback" env:"FALLBACK"`
	// From is the sender address.
	From string `yaml:"from" env:"FROM"`
	// ResendAPIKey authenticates the resend provider.
	ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	// Categories maps an alert category to its recipients.
	Categories map[string][]string `yaml:"categories"`
}

// Listener configures a network listener.
type Listener struct {
	// Listen is the listen address, e.g. ":8080". Empty disables the listener.
	Listen string `yaml:"listen" env:"LISTEN"`
}

// Log configures the global logger.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
	File   string `yaml:"file" env:"FILE"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "cofrn-settings.yaml"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// DefaultHeartbeatThreshold is the heartbeat age that marks a recorder as failed.
	DefaultHeartbeatThreshold = 5 * time.Minute

	// DefaultMinOkayTime is the quiet period after OK before a recovery notice goes out.
	DefaultMinOkayTime = 15 * time.Minute

	// DefaultTimeout bounds one health probe call.
	DefaultTimeout = 5 * time.Second

	// DefaultConcurrency caps bounded fan-out.
	DefaultConcurrency = 10

	// Backend names.
	BackendDynamoDB = "dynamodb"
	BackendS3       = "s3"
	BackendRedis    = "redis"
	BackendFile     = "file"

	defaultHeartbeatFile    = "cofrn-heartbeats.json"
	defaultAlarmFile        = "cofrn-alarms.json"
	defaultAlarmKey         = "alarms/state.json"
	defaultRedisKey         = "cofrn:alarms"
	defaultTagKey           = "alert-type"
	defaultCategory         = "default"
	defaultHeartbeatChannel = "recorders"
	defaultSweepInterval    = time.Minute
	defaultMonitorInterval  = time.Minute
	defaultProvider         = "log"

	// envPrefix prefixes every environment override.
	envPrefix = "COFRN_"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownBackend is returned for unsupported storage backends.
	errUnknownBackend = errors.New("unknown backend")
	// errMissingSetting is returned when a backend lacks a required setting.
	errMissingSetting = errors.New("missing setting")
)

// Load reads configuration from the provided path, applies COFRN_* environment
// overrides and validates the result. A missing file is not an error when the
// path was not given explicitly: Lambda functions run from environment only.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Environment-only configuration.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = applyEnv(&cfg, os.Environ()); err != nil {
		return nil, err
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions, the file may hold API keys.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks backend-specific required fields.
//
//nolint:cyclop // One flat list of defaults reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	hb := &cfg.Heartbeat
	if hb.Backend == "" {
		hb.Backend = BackendFile
	}

	if hb.Threshold <= 0 {
		hb.Threshold = DefaultHeartbeatThreshold
	}

	if hb.Category == "" {
		hb.Category = defaultHeartbeatChannel
	}

	if hb.Concurrency <= 0 {
		hb.Concurrency = DefaultConcurrency
	}

	if hb.Interval <= 0 {
		hb.Interval = defaultMonitorInterval
	}

	switch hb.Backend {
	case BackendDynamoDB:
		if hb.Table == "" {
			return fmt.Errorf("heartbeat.table: %w", errMissingSetting)
		}
	case BackendFile:
		if hb.File == "" {
			hb.File = defaultHeartbeatFile
		}
	default:
		return fmt.Errorf("heartbeat.backend %q: %w", hb.Backend, errUnknownBackend)
	}

	al := &cfg.Alarms
	if al.Backend == "" {
		al.Backend = BackendFile
	}

	if al.MinOkayTime <= 0 {
		al.MinOkayTime = DefaultMinOkayTime
	}

	if al.TagKey == "" {
		al.TagKey = defaultTagKey
	}

	if al.DefaultCategory == "" {
		al.DefaultCategory = defaultCategory
	}

	if al.SweepInterval <= 0 {
		al.SweepInterval = defaultSweepInterval
	}

	switch al.Backend {
	case BackendS3:
		if al.Bucket == "" {
			return fmt.Errorf("alarms.bucket: %w", errMissingSetting)
		}

		if al.Key == "" {
			al.Key = defaultAlarmKey
		}
	case BackendRedis:
		if al.RedisAddr == "" {
			return fmt.Errorf("alarms.redis_addr: %w", errMissingSetting)
		}

		if al.RedisKey == "" {
			al.RedisKey = defaultRedisKey
		}
	case BackendFile:
		if al.File == "" {
			al.File = defaultAlarmFile
		}
	default:
		return fmt.Errorf("alarms.backend %q: %w", al.Backend, errUnknownBackend)
	}

	if cfg.Alerts.Provider == "" {
		cfg.Alerts.Provider = defaultProvider
	}

	for _, l := range []Listener{cfg.HTTP, cfg.GRPC} {
		if l.Listen == "" {
			continue
		}

		if _, _, err := net.SplitHostPort(l.Listen); err != nil {
			return fmt.Errorf("invalid listen address %q: %w", l.Listen, err)
		}
	}

	return nil
}

// applyEnv overrides settings from COFRN_* variables given as KEY=VALUE pairs.
// The environment is passed in so tests do not mutate the process environment.
// Category recipients use one variable per category:
// COFRN_ALERTS_CATEGORY_<NAME>=a@x,b@y.
func applyEnv(cfg *Config, environ []string) error {
	vars := make(map[string]string, len(environ))

	for _, kv := range environ {
		if name, value, found := strings.Cut(kv, "="); found && strings.HasPrefix(name, envPrefix) {
			vars[name] = value
		}
	}

	err := env.ParseWithOptions(cfg, env.Options{
		Environment: vars,
		Prefix:      envPrefix,
	})
	if err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	if _, ok := vars[envPrefix+"ALERTS_FALLBACK"]; ok {
		cfg.Alerts.Fallback = splitList(strings.Join(cfg.Alerts.Fallback, ","))
	}

	const categoryPrefix = envPrefix + "ALERTS_CATEGORY_"

	for name, value := range vars {
		if !strings.HasPrefix(name, categoryPrefix) {
			continue
		}

		if cfg.Alerts.Categories == nil {
			cfg.Alerts.Categories = make(map[string][]string)
		}

		category := strings.ToLower(strings.TrimPrefix(name, categoryPrefix))
		cfg.Alerts.Categories[category] = splitList(value)
	}

	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}

	return result
}
