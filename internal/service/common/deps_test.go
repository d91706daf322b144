//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/require"

	"github.com/cofrn/cofrn-monitor/internal/config"
	"github.com/cofrn/cofrn-monitor/internal/repository/alarmcache"
	"github.com/cofrn/cofrn-monitor/internal/repository/heartbeats"
)

// TestHeartbeatRepository_Backends selects the store by backend name.
func TestHeartbeatRepository_Backends(t *testing.T) {
	t.Parallel()

	repo := HeartbeatRepository(config.Heartbeat{Backend: config.BackendFile, File: "hb.json"}, aws.Config{})
	require.IsType(t, &heartbeats.FileRepository{}, repo)

	repo = HeartbeatRepository(config.Heartbeat{Backend: config.BackendDynamoDB, Table: "hb"}, aws.Config{Region: "us-east-1"})
	require.IsType(t, &heartbeats.DynamoRepository{}, repo)
}

// TestAlarmCache_Backends selects the store by backend name.
func TestAlarmCache_Backends(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo, closeFn, err := AlarmCache(ctx, config.Alarms{File: filepath.Join(t.TempDir(), "a.json")}, aws.Config{})
	require.NoError(t, err)
	require.IsType(t, &alarmcache.FileRepository{}, repo)
	require.NoError(t, closeFn())

	repo, closeFn, err = AlarmCache(ctx, config.Alarms{Backend: config.BackendS3, Bucket: "b", Key: "k"}, aws.Config{Region: "us-east-1"})
	require.NoError(t, err)
	require.IsType(t, &alarmcache.S3Repository{}, repo)
	require.NoError(t, closeFn())

	server := miniredis.RunT(t)
	repo, closeFn, err = AlarmCache(ctx, config.Alarms{Backend: config.BackendRedis, RedisAddr: server.Addr(), RedisKey: "k"}, aws.Config{})
	require.NoError(t, err)
	require.IsType(t, &alarmcache.RedisRepository{}, repo)
	require.NoError(t, closeFn())
}

// TestAlerts_ProviderSelection builds a log-only dispatcher without AWS.
func TestAlerts_ProviderSelection(t *testing.T) {
	t.Parallel()

	d, err := Alerts(context.Background(), config.Alerts{Provider: "log"}, aws.Config{})
	require.NoError(t, err)
	require.NotNil(t, d)

	require.True(t, usesProvider(config.Alerts{Provider: "log", Fallback: []string{"ses"}}, "ses"))
	require.False(t, usesProvider(config.Alerts{Provider: "log"}, "ses"))
}

// TestTagResolver_NoRegion falls back to the default category.
func TestTagResolver_NoRegion(t *testing.T) {
	t.Parallel()

	r := TagResolver(config.Alarms{TagKey: "alert-type", DefaultCategory: "default"}, aws.Config{})
	require.Equal(t, "default", r.Category(context.Background(), "arn:aws:cloudwatch:us-east-1:1:alarm:x"))
}
