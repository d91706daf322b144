package heartbeats

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
)

// fakeDynamo serves scan pages and records update inputs.
type fakeDynamo struct {
	pages     []*dynamodb.ScanOutput
	scanCalls int
	updates   []*dynamodb.UpdateItemInput
	updateOut *dynamodb.UpdateItemOutput
	updateErr error
}

func (f *fakeDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	page := f.pages[f.scanCalls]
	f.scanCalls++

	return page, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	if f.updateOut != nil {
		return f.updateOut, nil
	}

	return &dynamodb.UpdateItemOutput{}, nil
}

func item(server string, lastHeartbeat int64, primary, failed bool) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"Server":        &types.AttributeValueMemberS{Value: server},
		"LastHeartbeat": &types.AttributeValueMemberN{Value: strconv.FormatInt(lastHeartbeat, 10)},
		"IsPrimary":     &types.AttributeValueMemberBOOL{Value: primary},
		"IsFailed":      &types.AttributeValueMemberBOOL{Value: failed},
		"IsActive":      &types.AttributeValueMemberBOOL{Value: !failed},
	}
}

// TestDynamoRepository_List follows LastEvaluatedKey across pages.
func TestDynamoRepository_List(t *testing.T) {
	t.Parallel()
	client := &fakeDynamo{
		pages: []*dynamodb.ScanOutput{
			{
				Items:            []map[string]types.AttributeValue{item("rec-a", 1000, true, false)},
				LastEvaluatedKey: map[string]types.AttributeValue{"Server": &types.AttributeValueMemberS{Value: "rec-a"}},
			},
			{
				Items: []map[string]types.AttributeValue{item("rec-b", 2000, false, true)},
			},
		},
	}

	records, err := NewDynamoRepository(client, "heartbeats").List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, client.scanCalls)
	require.Equal(t, []*heartbeat.Record{
		{Server: "rec-a", LastHeartbeat: 1000, IsPrimary: true, IsActive: true},
		{Server: "rec-b", LastHeartbeat: 2000, IsFailed: true},
	}, records)
}

// TestDynamoRepository_UpdateState builds a conditional update and maps condition failures.
func TestDynamoRepository_UpdateState(t *testing.T) {
	t.Parallel()
	client := &fakeDynamo{}
	repo := NewDynamoRepository(client, "heartbeats")
	ctx := context.Background()

	require.NoError(t, repo.UpdateState(ctx, &heartbeat.Record{Server: "rec-a", IsFailed: true}, false))
	require.Len(t, client.updates, 1)

	in := client.updates[0]
	require.Equal(t, "heartbeats", aws.ToString(in.TableName))
	require.Equal(t,
		"attribute_exists(#server) AND (attribute_not_exists(IsFailed) OR IsFailed = :was)",
		aws.ToString(in.ConditionExpression))
	require.Equal(t, map[string]string{"#server": "Server"}, in.ExpressionAttributeNames)
	require.Equal(t, &types.AttributeValueMemberBOOL{Value: true}, in.ExpressionAttributeValues[":failed"])
	require.Equal(t, &types.AttributeValueMemberS{Value: "rec-a"}, in.Key["Server"])

	require.NoError(t, repo.UpdateState(ctx, &heartbeat.Record{Server: "rec-a"}, true))
	require.Equal(t, "attribute_exists(#server) AND IsFailed = :was", aws.ToString(client.updates[1].ConditionExpression))

	client.updateErr = &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	require.ErrorIs(t, repo.UpdateState(ctx, &heartbeat.Record{Server: "rec-a"}, true), ErrConflict)

	boom := errors.New("throttled")
	client.updateErr = boom
	err := repo.UpdateState(ctx, &heartbeat.Record{Server: "rec-a"}, true)
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrConflict)

	require.ErrorIs(t, repo.UpdateState(ctx, &heartbeat.Record{}, true), errEmptyServer)
}

// TestDynamoRepository_Touch checks the upsert expression and decoded result.
func TestDynamoRepository_Touch(t *testing.T) {
	t.Parallel()
	at := time.UnixMilli(1_700_000_000_000)
	client := &fakeDynamo{
		updateOut: &dynamodb.UpdateItemOutput{Attributes: item("rec-a", at.UnixMilli(), true, false)},
	}
	repo := NewDynamoRepository(client, "heartbeats")
	primary := true

	rec, err := repo.Touch(context.Background(), "rec-a", &primary, at)
	require.NoError(t, err)
	require.Equal(t, &heartbeat.Record{Server: "rec-a", LastHeartbeat: at.UnixMilli(), IsPrimary: true, IsActive: true}, rec)

	in := client.updates[0]
	require.Contains(t, aws.ToString(in.UpdateExpression), "IsPrimary = :primary")
	require.Equal(t, types.ReturnValueAllNew, in.ReturnValues)
	require.Equal(t, &types.AttributeValueMemberN{Value: "1700000000000"}, in.ExpressionAttributeValues[":at"])

	_, err = repo.Touch(context.Background(), "rec-a", nil, at)
	require.NoError(t, err)
	require.Contains(t, aws.ToString(client.updates[1].UpdateExpression), "IsPrimary = if_not_exists(IsPrimary, :false)")
	require.NotContains(t, client.updates[1].ExpressionAttributeValues, ":primary")
}
