package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/MerrickKing/walrusbot/internal/domain"
)

// ConfigRepo reads runtime bot settings from the config table.
// The core treats it as a synchronous read-only map; writes happen out of
// band through administrative tooling.
type ConfigRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewConfigRepo(client *dynamodb.Client, tableName string) *ConfigRepo {
	return &ConfigRepo{client: client, tableName: tableName}
}

// Get returns the value for key, or domain.ErrNotFound for absent keys.
func (r *ConfigRepo) Get(ctx context.Context, key string) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("key", key),
	})
	if err != nil {
		return "", err
	}
	if out.Item == nil {
		return "", fmt.Errorf("config key %q: %w", key, domain.ErrNotFound)
	}
	var e domain.ConfigEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return "", err
	}
	return e.Value, nil
}

// MustGet is Get for keys the process cannot run without; main calls it
// during startup and treats an error as fatal.
func (r *ConfigRepo) MustGet(ctx context.Context, key string) (string, error) {
	v, err := r.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("required config key %q missing: %w", key, err)
	}
	return v, nil
}
