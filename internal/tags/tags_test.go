package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/require"
)

type fakeCloudWatch struct {
	tags  map[string][]types.Tag
	err   error
	calls int
}

func (f *fakeCloudWatch) ListTagsForResource(
	_ context.Context,
	in *cloudwatch.ListTagsForResourceInput,
	_ ...func(*cloudwatch.Options),
) (*cloudwatch.ListTagsForResourceOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	return &cloudwatch.ListTagsForResourceOutput{Tags: f.tags[aws.ToString(in.ResourceARN)]}, nil
}

const arn = "arn:aws:cloudwatch:us-east-1:123456789012:alarm:db-cpu-high"

// TestResolver_Category covers tag hits, misses and lookup failures.
func TestResolver_Category(t *testing.T) {
	t.Parallel()
	client := &fakeCloudWatch{tags: map[string][]types.Tag{
		arn: {
			{Key: aws.String("team"), Value: aws.String("dba")},
			{Key: aws.String("alert-type"), Value: aws.String("critical")},
		},
	}}
	r := NewResolver(client, "alert-type", "default")
	ctx := context.Background()

	require.Equal(t, "critical", r.Category(ctx, arn))
	require.Equal(t, "default", r.Category(ctx, arn+"-untagged"))
	require.Equal(t, "default", r.Category(ctx, ""))
	require.Equal(t, 2, client.calls)

	client.err = errors.New("AccessDenied")
	require.Equal(t, "default", r.Category(ctx, arn))

	require.Equal(t, "default", NewResolver(nil, "alert-type", "default").Category(ctx, arn))
}
