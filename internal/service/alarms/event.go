package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	domain "github.com/cofrn/cofrn-monitor/internal/domain/alarm"
	"github.com/cofrn/cofrn-monitor/internal/validate"
)

// DetailTypeStateChange is the EventBridge detail type of alarm state changes.
const DetailTypeStateChange = "CloudWatch Alarm State Change"

// Event is one alarm state change.
type Event struct {
	AlarmName string            `json:"alarmName"`
	AlarmARN  string            `json:"alarmArn,omitempty"`
	State     domain.Transition `json:"state"`
	Reason    string            `json:"reason,omitempty"`
	// Time is when CloudWatch saw the change. It is only logged.
	Time time.Time `json:"-"`
}

// EventSchema validates an alarm event payload.
func EventSchema() validate.Schema {
	return validate.Schema{
		{Name: "alarmName", Required: true, Types: []validate.Constraint{
			validate.String{Regex: regexp.MustCompile(`^\S.{0,254}$`)},
		}},
		{Name: "alarmArn", Types: []validate.Constraint{
			validate.String{Regex: regexp.MustCompile(`^arn:aws[a-z-]*:cloudwatch:`)},
		}},
		{Name: "state", Required: true, Types: []validate.Constraint{
			validate.String{Exact: []string{string(domain.TransitionAlarm), string(domain.TransitionOK)}},
		}},
		{Name: "reason", Types: []validate.Constraint{
			validate.String{},
			validate.Null{},
		}},
	}
}

var (
	// ErrInvalidEvent is returned when an event payload fails validation.
	ErrInvalidEvent = errors.New("invalid alarm event")
	// ErrIgnoredState is returned for state changes that are neither ALARM nor OK.
	ErrIgnoredState = errors.New("alarm state is not handled")
)

// stateChangeDetail is the detail document of a state change event.
type stateChangeDetail struct {
	AlarmName string `json:"alarmName"`
	State     struct {
		Value     string `json:"value"`
		Reason    string `json:"reason"`
		Timestamp string `json:"timestamp"`
	} `json:"state"`
}

// FromCloudWatch converts a scheduled or state change event. It returns a nil
// Event for anything but a state change, which means sweep only.
func FromCloudWatch(ctx context.Context, event events.CloudWatchEvent) (*Event, error) {
	if event.DetailType != DetailTypeStateChange {
		return nil, nil //nolint:nilnil // A non state change event is a sweep trigger.
	}

	var detail stateChangeDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return nil, fmt.Errorf("%w: decode detail: %v", ErrInvalidEvent, err)
	}

	if detail.State.Value == "INSUFFICIENT_DATA" {
		return nil, ErrIgnoredState
	}

	raw := map[string]any{
		"alarmName": detail.AlarmName,
		"state":     detail.State.Value,
		"reason":    detail.State.Reason,
	}

	if len(event.Resources) > 0 {
		raw["alarmArn"] = event.Resources[0]
	}

	parsed, err := Validate(ctx, raw)
	if err != nil {
		return nil, err
	}

	parsed.Time = event.Time

	return parsed, nil
}

// Validate checks a raw payload against EventSchema and binds it.
func Validate(ctx context.Context, raw any) (*Event, error) {
	parsed, bad := validate.Decode[Event](ctx, raw, EventSchema())
	if len(bad) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEvent, strings.Join(bad, ", "))
	}

	return parsed, nil
}
