package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-nosql/internal/domain"
)

// TwoFactorConfirmationRepo stores the per-user marker left by a passed code check.
// PK: confirmation_id. GSI: user_id-created_at-index.
type TwoFactorConfirmationRepo struct {
	client    API
	tableName string
}

func NewTwoFactorConfirmationRepo(client API, tableName string) *TwoFactorConfirmationRepo {
	return &TwoFactorConfirmationRepo{client: client, tableName: tableName}
}

// Replace removes any confirmation held by c.UserID and stores c in one transaction.
func (r *TwoFactorConfirmationRepo) Replace(ctx context.Context, c *domain.TwoFactorConfirmation) error {
	return replaceAll(ctx, r.client, r.tableName, indexUserIDCreated, fieldUserID, c.UserID, fieldConfirmationID, c)
}

func (r *TwoFactorConfirmationRepo) GetByUserID(ctx context.Context, userID string) (*domain.TwoFactorConfirmation, error) {
	item, ok, err := queryNewest(ctx, r.client, r.tableName, indexUserIDCreated, fieldUserID, userID)
	if err != nil {
		return nil, storageErr("query two-factor confirmation", err)
	}
	if !ok {
		return nil, fmt.Errorf("two-factor confirmation not found: %w", domain.ErrNotFound)
	}
	var c domain.TwoFactorConfirmation
	if err := attributevalue.UnmarshalMap(item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal two-factor confirmation: %w", err)
	}
	return &c, nil
}

func (r *TwoFactorConfirmationRepo) Delete(ctx context.Context, confirmationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldConfirmationID, confirmationID),
	})
	if err != nil {
		return storageErr("delete two-factor confirmation", err)
	}
	return nil
}
