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
	"github.com/go-auth-nosql/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// emailGuardPrefix keys the placeholder item that reserves an email in the
// users table. It carries no email attribute so it stays out of email-index.
const emailGuardPrefix = "EMAIL#"

// Put creates u. A user with an email is written together with its email
// guard in one transaction, so concurrent creates for the same address
// cannot both succeed. A taken email or user id returns domain.ErrConflict.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	notExists := aws.String("attribute_not_exists(#pk)")
	pkName := map[string]string{"#pk": fieldUserID}

	if u.Email == "" {
		_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                aws.String(r.tableName),
			Item:                     item,
			ConditionExpression:      notExists,
			ExpressionAttributeNames: pkName,
		})
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("user %s exists: %w", u.UserID, domain.ErrConflict)
		}
		if err != nil {
			return storageErr("put user", err)
		}
		return nil
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     strKey(fieldUserID, emailGuardPrefix+u.Email),
				ConditionExpression:      notExists,
				ExpressionAttributeNames: pkName,
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     item,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: pkName,
			}},
		},
	})
	if conditionFailed(err) {
		return fmt.Errorf("email %s in use: %w", u.Email, domain.ErrConflict)
	}
	if err != nil {
		return storageErr("put user", err)
	}
	return nil
}

// conditionFailed reports whether a transaction was cancelled by a failed
// condition rather than by throttling or a conflict with another transaction.
func conditionFailed(err error) bool {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return false
	}
	for _, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, storageErr("get user", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexEmail),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, storageErr("query user by email", err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, existingItemUpdate(r.tableName, fieldUserID, userID, ue))
	if err != nil {
		return updateErr("update user", err)
	}
	return nil
}
