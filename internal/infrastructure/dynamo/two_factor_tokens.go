package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-nosql/internal/domain"
)

// TwoFactorTokenRepo manages login codes.
// PK: token_id. GSI: email-created_at-index. expires_at is the TTL attribute.
type TwoFactorTokenRepo struct {
	client    API
	tableName string
}

func NewTwoFactorTokenRepo(client API, tableName string) *TwoFactorTokenRepo {
	return &TwoFactorTokenRepo{client: client, tableName: tableName}
}

// Replace removes every code for t.Email and stores t in one transaction.
func (r *TwoFactorTokenRepo) Replace(ctx context.Context, t *domain.TwoFactorToken) error {
	return replaceAll(ctx, r.client, r.tableName, indexEmailCreated, fieldEmail, t.Email, fieldTokenID, t)
}

// GetByEmail returns the newest code issued for email.
func (r *TwoFactorTokenRepo) GetByEmail(ctx context.Context, email string) (*domain.TwoFactorToken, error) {
	item, ok, err := queryNewest(ctx, r.client, r.tableName, indexEmailCreated, fieldEmail, email)
	if err != nil {
		return nil, storageErr("query two-factor token", err)
	}
	if !ok {
		return nil, fmt.Errorf("two-factor token not found: %w", domain.ErrNotFound)
	}
	var t domain.TwoFactorToken
	if err := attributevalue.UnmarshalMap(item, &t); err != nil {
		return nil, fmt.Errorf("unmarshal two-factor token: %w", err)
	}
	return &t, nil
}

func (r *TwoFactorTokenRepo) Delete(ctx context.Context, tokenID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldTokenID, tokenID),
	})
	if err != nil {
		return storageErr("delete two-factor token", err)
	}
	return nil
}
