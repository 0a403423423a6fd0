package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-nosql/internal/domain"
)

// VerificationTokenRepo manages email verification tokens.
// PK: token_id. GSIs: email-created_at-index, token-index. expires_at is the TTL attribute.
type VerificationTokenRepo struct {
	client    API
	tableName string
}

func NewVerificationTokenRepo(client API, tableName string) *VerificationTokenRepo {
	return &VerificationTokenRepo{client: client, tableName: tableName}
}

// Replace removes every token for t.Email and stores t in one transaction.
func (r *VerificationTokenRepo) Replace(ctx context.Context, t *domain.VerificationToken) error {
	return replaceAll(ctx, r.client, r.tableName, indexEmailCreated, fieldEmail, t.Email, fieldTokenID, t)
}

// GetByEmail returns the newest token issued for email.
func (r *VerificationTokenRepo) GetByEmail(ctx context.Context, email string) (*domain.VerificationToken, error) {
	item, ok, err := queryNewest(ctx, r.client, r.tableName, indexEmailCreated, fieldEmail, email)
	if err != nil {
		return nil, storageErr("query verification token", err)
	}
	if !ok {
		return nil, fmt.Errorf("verification token not found: %w", domain.ErrNotFound)
	}
	var t domain.VerificationToken
	if err := attributevalue.UnmarshalMap(item, &t); err != nil {
		return nil, fmt.Errorf("unmarshal verification token: %w", err)
	}
	return &t, nil
}

func (r *VerificationTokenRepo) GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexToken),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldToken},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: token}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, storageErr("query verification token", err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("verification token not found: %w", domain.ErrNotFound)
	}
	var t domain.VerificationToken
	if err := attributevalue.UnmarshalMap(out.Items[0], &t); err != nil {
		return nil, fmt.Errorf("unmarshal verification token: %w", err)
	}
	return &t, nil
}

func (r *VerificationTokenRepo) Delete(ctx context.Context, tokenID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldTokenID, tokenID),
	})
	if err != nil {
		return storageErr("delete verification token", err)
	}
	return nil
}
