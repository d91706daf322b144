package tags

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"github.com/cofrn/cofrn-monitor/internal/logger"
)

// CloudWatchAPI is the subset of the CloudWatch client used by Resolver.
type CloudWatchAPI interface {
	ListTagsForResource(
		ctx context.Context,
		params *cloudwatch.ListTagsForResourceInput,
		optFns ...func(*cloudwatch.Options),
	) (*cloudwatch.ListTagsForResourceOutput, error)
}

// Resolver reads the category tag of an alarm.
type Resolver struct {
	client          CloudWatchAPI
	tagKey          string
	defaultCategory string
}

// NewResolver creates a resolver. client may be nil, in which case every
// alarm gets defaultCategory.
func NewResolver(client CloudWatchAPI, tagKey, defaultCategory string) *Resolver {
	return &Resolver{
		client:          client,
		tagKey:          tagKey,
		defaultCategory: defaultCategory,
	}
}

// Category returns the tag value for the alarm, or the default category when
// the ARN is unknown, the tag is absent or the lookup fails.
func (r *Resolver) Category(ctx context.Context, alarmARN string) string {
	if alarmARN == "" || r.client == nil {
		return r.defaultCategory
	}

	category, err := r.lookup(ctx, alarmARN)
	if err != nil {
		logger.WarnKV(ctx, "Failed to read alarm tags, using default category",
			"alarm_arn", alarmARN,
			"category", r.defaultCategory,
			"error", err)

		return r.defaultCategory
	}

	if category == "" {
		return r.defaultCategory
	}

	return category
}

func (r *Resolver) lookup(ctx context.Context, alarmARN string) (string, error) {
	out, err := r.client.ListTagsForResource(ctx, &cloudwatch.ListTagsForResourceInput{
		ResourceARN: aws.String(alarmARN),
	})
	if err != nil {
		return "", fmt.Errorf("list tags for %s: %w", alarmARN, err)
	}

	for _, tag := range out.Tags {
		if aws.ToString(tag.Key) == r.tagKey {
			return aws.ToString(tag.Value), nil
		}
	}

	return "", nil
}
