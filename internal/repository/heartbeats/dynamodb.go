package heartbeats

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/cofrn/cofrn-monitor/internal/domain/heartbeat"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepository.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoRepository keeps heartbeat rows in a DynamoDB table keyed by Server.
type DynamoRepository struct {
	client DynamoAPI
	table  string
}

// NewDynamoRepository creates a repository for the given table.
func NewDynamoRepository(client DynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{
		client: client,
		table:  table,
	}
}

// List scans the whole table.
func (r *DynamoRepository) List(ctx context.Context) ([]*heartbeat.Record, error) {
	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	})

	var records []*heartbeat.Record

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan table %s: %w", r.table, err)
		}

		var batch []*heartbeat.Record
		if err = attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("decode heartbeat rows: %w", err)
		}

		records = append(records, batch...)
	}

	return records, nil
}

// UpdateState conditionally writes the failure flags of record.
func (r *DynamoRepository) UpdateState(ctx context.Context, record *heartbeat.Record, wasFailed bool) error {
	if record.Server == "" {
		return errEmptyServer
	}

	// A row deleted since the scan must not be recreated.
	condition := "attribute_exists(#server) AND IsFailed = :was"
	if !wasFailed {
		condition = "attribute_exists(#server) AND (attribute_not_exists(IsFailed) OR IsFailed = :was)"
	}

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 serverKey(record.Server),
		UpdateExpression:    aws.String("SET IsFailed = :failed, IsActive = :active"),
		ConditionExpression: aws.String(condition),
		ExpressionAttributeNames: map[string]string{
			"#server": "Server",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed": &types.AttributeValueMemberBOOL{Value: record.IsFailed},
			":active": &types.AttributeValueMemberBOOL{Value: record.IsActive},
			":was":    &types.AttributeValueMemberBOOL{Value: wasFailed},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrConflict
		}

		return fmt.Errorf("update heartbeat %s: %w", record.Server, err)
	}

	return nil
}

// Touch stamps the heartbeat of server and returns the stored row.
func (r *DynamoRepository) Touch(
	ctx context.Context,
	server string,
	isPrimary *bool,
	at time.Time,
) (*heartbeat.Record, error) {
	if server == "" {
		return nil, errEmptyServer
	}

	values := map[string]types.AttributeValue{
		":at":    &types.AttributeValueMemberN{Value: strconv.FormatInt(at.UnixMilli(), 10)},
		":false": &types.AttributeValueMemberBOOL{Value: false},
	}

	primary := "if_not_exists(IsPrimary, :false)"
	if isPrimary != nil {
		primary = ":primary"
		values[":primary"] = &types.AttributeValueMemberBOOL{Value: *isPrimary}
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key:       serverKey(server),
		UpdateExpression: aws.String(
			"SET LastHeartbeat = :at, IsPrimary = " + primary +
				", IsFailed = if_not_exists(IsFailed, :false), IsActive = if_not_exists(IsActive, :false)",
		),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("touch heartbeat %s: %w", server, err)
	}

	var record heartbeat.Record
	if err = attributevalue.UnmarshalMap(out.Attributes, &record); err != nil {
		return nil, fmt.Errorf("decode heartbeat row: %w", err)
	}

	return &record, nil
}

func serverKey(server string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"Server": &types.AttributeValueMemberS{Value: server},
	}
}
