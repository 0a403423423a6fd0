package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-nosql/internal/config"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
// Safe to call on every startup; skips tables that already exist.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			strAttr(fieldUserID),
			strAttr(fieldEmail),
		},
		KeySchema: hashKey(fieldUserID),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexEmail, fieldEmail, ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Sessions),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			strAttr(fieldSessionID),
			strAttr(fieldUserID),
			strAttr(fieldRefreshToken),
		},
		KeySchema: hashKey(fieldSessionID),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexUserID, fieldUserID, ""),
			gsi(indexRefreshToken, fieldRefreshToken, ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.VerificationTokens),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			strAttr(fieldTokenID),
			strAttr(fieldEmail),
			strAttr(fieldToken),
			numAttr(fieldCreatedAt),
		},
		KeySchema: hashKey(fieldTokenID),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexEmailCreated, fieldEmail, fieldCreatedAt),
			gsi(indexToken, fieldToken, ""),
		},
	})
	enableTTL(ctx, client, tables.VerificationTokens, fieldPurgeAt)

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.TwoFactorTokens),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			strAttr(fieldTokenID),
			strAttr(fieldEmail),
			numAttr(fieldCreatedAt),
		},
		KeySchema: hashKey(fieldTokenID),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexEmailCreated, fieldEmail, fieldCreatedAt),
		},
	})
	enableTTL(ctx, client, tables.TwoFactorTokens, fieldPurgeAt)

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.TwoFactorConfirmations),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			strAttr(fieldConfirmationID),
			strAttr(fieldUserID),
			numAttr(fieldCreatedAt),
		},
		KeySchema: hashKey(fieldConfirmationID),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexUserIDCreated, fieldUserID, fieldCreatedAt),
		},
	})
}

func strAttr(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
}

func numAttr(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeN}
}

func hashKey(name string) []types.KeySchemaElement {
	return []types.KeySchemaElement{{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashAttr, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashAttr), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", *input.TableName)
	}
}

func enableTTL(ctx context.Context, client *dynamodb.Client, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
