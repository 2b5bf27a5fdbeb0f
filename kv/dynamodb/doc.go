// Package dynamodb implements kv.Store on Amazon DynamoDB.
//
// A kv bucket is a table with a string partition key "key" and a binary
// attribute "value":
//
//	aws dynamodb create-table \
//	  --table-name pattern-monitor-vectors \
//	  --attribute-definitions AttributeName=key,AttributeType=S \
//	  --key-schema AttributeName=key,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb
