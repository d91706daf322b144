package alarms

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
)

func stateChange(t *testing.T, name, value, reason string) events.CloudWatchEvent {
	t.Helper()

	detail, err := json.Marshal(map[string]any{
		"alarmName": name,
		"state": map[string]any{
			"value":     value,
			"reason":    reason,
			"timestamp": "2024-03-01T12:00:00.000+0000",
		},
		"previousState": map[string]any{"value": "OK"},
	})
	require.NoError(t, err)

	return events.CloudWatchEvent{
		ID:         "c4c1c1c9-6542-e61b-6ef0-8c4d36933a92",
		DetailType: DetailTypeStateChange,
		Source:     "aws.cloudwatch",
		Time:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Resources:  []string{testARN},
		Detail:     detail,
	}
}

// TestFromCloudWatch_StateChange decodes an alarm state change.
func TestFromCloudWatch_StateChange(t *testing.T) {
	t.Parallel()

	event, err := FromCloudWatch(context.Background(), stateChange(t, "db-cpu-high", "ALARM", "too hot"))
	require.NoError(t, err)
	require.Equal(t, "db-cpu-high", event.AlarmName)
	require.Equal(t, testARN, event.AlarmARN)
	require.Equal(t, domain.TransitionAlarm, event.State)
	require.Equal(t, "too hot", event.Reason)
	require.False(t, event.Time.IsZero())
}

// TestFromCloudWatch_Sweep treats other detail types as a sweep.
func TestFromCloudWatch_Sweep(t *testing.T) {
	t.Parallel()

	event, err := FromCloudWatch(context.Background(), events.CloudWatchEvent{DetailType: "Scheduled Event"})
	require.NoError(t, err)
	require.Nil(t, event)
}

// TestFromCloudWatch_Invalid rejects bad payloads.
func TestFromCloudWatch_Invalid(t *testing.T) {
	t.Parallel()

	_, err := FromCloudWatch(context.Background(), stateChange(t, "db-cpu-high", "INSUFFICIENT_DATA", ""))
	require.ErrorIs(t, err, ErrIgnoredState)

	_, err = FromCloudWatch(context.Background(), stateChange(t, "", "ALARM", ""))
	require.ErrorIs(t, err, ErrInvalidEvent)
	require.Contains(t, err.Error(), "alarmName")

	_, err = FromCloudWatch(context.Background(), events.CloudWatchEvent{
		DetailType: DetailTypeStateChange,
		Detail:     json.RawMessage(`"not an object"`),
	})
	require.ErrorIs(t, err, ErrInvalidEvent)
}

// TestValidate_Payload checks the HTTP payload form.
func TestValidate_Payload(t *testing.T) {
	t.Parallel()

	event, err := Validate(context.Background(), map[string]any{"alarmName": "api-5xx", "state": "OK", "reason": nil})
	require.NoError(t, err)
	require.Equal(t, domain.TransitionOK, event.State)
	require.Empty(t, event.Reason)

	_, err = Validate(context.Background(), map[string]any{"alarmName": "api-5xx", "state": "maybe", "alarmArn": "nope"})
	require.ErrorIs(t, err, ErrInvalidEvent)
	require.Contains(t, err.Error(), "alarmArn, state")
}

// TestHandleCloudWatchEvent runs the Lambda path end to end.
func TestHandleCloudWatchEvent(t *testing.T) {
	t.Parallel()
	sender := new(fakeSender)
	svc := newTestService(new(memoryRepository), sender, &clock{now: t0})

	result, err := svc.HandleCloudWatchEvent(context.Background(), stateChange(t, "db-cpu-high", "ALARM", "too hot"))
	require.NoError(t, err)
	require.Len(t, result.Notices, 1)

	result, err = svc.HandleCloudWatchEvent(context.Background(), stateChange(t, "db-cpu-high", "INSUFFICIENT_DATA", ""))
	require.NoError(t, err)
	require.Empty(t, result.Notices)

	_, err = svc.HandleCloudWatchEvent(context.Background(), stateChange(t, "", "ALARM", ""))
	require.ErrorIs(t, err, ErrInvalidEvent)
}
