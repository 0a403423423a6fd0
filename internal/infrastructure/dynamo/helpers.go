package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-nosql/internal/domain"
)

// storageErr tags an SDK failure so callers can tell it apart from a missing record.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

// updateErr reports a failed attribute_exists condition as a missing record.
func updateErr(op string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return storageErr(op, err)
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// existingItemUpdate builds an UpdateItem that only applies when the item
// with primary key pk=value already exists. UpdateItem would otherwise
// create a partial item.
func existingItemUpdate(table, pk, value string, ue *updateExpr) *dynamodb.UpdateItemInput {
	names := make(map[string]string, len(ue.Names)+1)
	for k, v := range ue.Names {
		names[k] = v
	}
	names["#pk"] = pk
	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       strKey(pk, value),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: ue.Values,
	}
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET expression.
// Fields are emitted in sorted order so the expression is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (*updateExpr, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := &updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

// queryNewest returns the most recent item on a hash+range GSI whose range key
// is created_at. ok is false when nothing matches.
func queryNewest(ctx context.Context, client API, table, index, attr, value string) (map[string]types.AttributeValue, bool, error) {
	out, err := client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, false, err
	}
	if len(out.Items) == 0 {
		return nil, false, nil
	}
	return out.Items[0], true, nil
}

// replaceAll deletes every item whose attr equals value (found through index)
// and puts item, all inside one TransactWriteItems call. This keeps the
// at-most-one-per-key invariant for tokens and confirmations.
func replaceAll(ctx context.Context, client API, table, index, attr, value, pk string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	out, err := client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ProjectionExpression:      aws.String("#pk"),
		ExpressionAttributeNames:  map[string]string{"#a": attr, "#pk": pk},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
	})
	if err != nil {
		return storageErr("query existing", err)
	}

	items := make([]types.TransactWriteItem, 0, len(out.Items)+1)
	for _, existing := range out.Items {
		key, ok := existing[pk]
		if !ok {
			continue
		}
		items = append(items, types.TransactWriteItem{Delete: &types.Delete{
			TableName: aws.String(table),
			Key:       map[string]types.AttributeValue{pk: key},
		}})
	}
	items = append(items, types.TransactWriteItem{Put: &types.Put{
		TableName: aws.String(table),
		Item:      av,
	}})

	if _, err := client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return storageErr("replace", err)
	}
	return nil
}
