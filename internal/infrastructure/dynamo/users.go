package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/MerrickKing/walrusbot/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the user records table.
//
// Writes are conditional: a losing concurrent writer gets domain.ErrConflict
// instead of silently overwriting. The store, not the bot, arbitrates races
// between near-simultaneous submissions for the same user.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.UserRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user record %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.UserRecord
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new record. Fails with domain.ErrConflict when a record
// for the same user id already exists (lost race on first submission).
func (r *UserRepo) Create(ctx context.Context, u *domain.UserRecord) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("user record %s already exists: %w", u.UserID, domain.ErrConflict)
	}
	return err
}

// Update applies a SET update guarded on the updated_at value the caller
// observed when it read the record. A concurrent writer that got there
// first changes updated_at, so the condition fails and the caller sees
// domain.ErrConflict.
func (r *UserRepo) Update(ctx context.Context, userID string, observed time.Time, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	observedAV, err := attributevalue.Marshal(observed)
	if err != nil {
		return err
	}
	ue.Values[":observed"] = observedAV
	ue.Names["#updated"] = "updated_at"
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("#updated = :observed"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("user record %s changed concurrently: %w", userID, domain.ErrConflict)
	}
	return err
}

// Stats counts total and verified records. Used by the ops API only, so a
// table scan is acceptable at the expected member counts.
func (r *UserRepo) Stats(ctx context.Context) (total, verified int, err error) {
	var startKey map[string]types.AttributeValue
	for {
		out, scanErr := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(r.tableName),
			ProjectionExpression: aws.String("verified"),
			ExclusiveStartKey:    startKey,
		})
		if scanErr != nil {
			return 0, 0, scanErr
		}
		for _, item := range out.Items {
			total++
			if v, ok := item["verified"].(*types.AttributeValueMemberBOOL); ok && v.Value {
				verified++
			}
		}
		if out.LastEvaluatedKey == nil {
			return total, verified, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
