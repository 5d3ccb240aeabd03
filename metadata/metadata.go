// Package metadata keeps display metadata for corpus entries in a DynamoDB
// table keyed by MetadataRef.
package metadata

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jeffreytso/contourdex/logging"
	"github.com/jeffreytso/contourdex/model"
	"github.com/jeffreytso/contourdex/util"
	"github.com/mdobak/go-xerrors"
)

// BatchGetItem accepts at most 100 keys per request.
const maxBatchKeys = 100

type item struct {
	PK string `dynamodbav:"PK"`
	model.Metadata
}

type Dynamo struct {
	client dynamodbiface.DynamoDBAPI
	table  string
	logger logging.Logger
}

// NewDynamo connects to table. An empty endpoint means the regular AWS
// endpoint for region.
func NewDynamo(table, region, endpoint string) (*Dynamo, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, xerrors.New("create DynamoDB session", err)
	}
	return NewDynamoWithClient(dynamodb.New(sess), table), nil
}

func NewDynamoWithClient(client dynamodbiface.DynamoDBAPI, table string) *Dynamo {
	return &Dynamo{
		client: client,
		table:  table,
		logger: logging.WithFields(logging.Fields{"component": "metadata", "table": table}),
	}
}

func (d *Dynamo) Put(ctx context.Context, ref string, m model.Metadata) error {
	av, err := dynamodbattribute.MarshalMap(item{PK: ref, Metadata: m})
	if err != nil {
		return xerrors.New("marshal metadata "+ref, err)
	}
	_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	})
	if err != nil {
		return xerrors.New("put metadata "+ref, err)
	}
	return nil
}

// Get looks up refs in chunks and returns whatever was found.
func (d *Dynamo) Get(ctx context.Context, refs []string) (map[string]model.Metadata, error) {
	res := make(map[string]model.Metadata)

	for _, chunk := range util.Chunk(refs, maxBatchKeys) {
		var keys []map[string]*dynamodb.AttributeValue
		for _, ref := range chunk {
			keys = append(keys, map[string]*dynamodb.AttributeValue{
				"PK": {S: aws.String(ref)},
			})
		}

		out, err := d.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]*dynamodb.KeysAndAttributes{
				d.table: {Keys: keys},
			},
		})
		if err != nil {
			return res, xerrors.New("batch get metadata", err)
		}

		for _, v := range out.Responses[d.table] {
			var it item
			if err := dynamodbattribute.UnmarshalMap(v, &it); err != nil {
				d.logger.Warn("skipping malformed metadata item", logging.Fields{"error": err.Error()})
				continue
			}
			res[it.PK] = it.Metadata
		}
	}
	return res, nil
}

// Resolve fills Metadata on entries that lack it. Lookup failures leave
// entries as they were.
func (d *Dynamo) Resolve(ctx context.Context, entries []model.CorpusEntry) []model.CorpusEntry {
	var refs []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.Metadata == nil && e.MetadataRef != "" && !seen[e.MetadataRef] {
			seen[e.MetadataRef] = true
			refs = append(refs, e.MetadataRef)
		}
	}
	if len(refs) == 0 {
		return entries
	}

	found, err := d.Get(ctx, refs)
	if err != nil {
		d.logger.Error(err, "metadata lookup failed", logging.Fields{"refs": len(refs)})
	}
	for i := range entries {
		if entries[i].Metadata != nil {
			continue
		}
		if m, ok := found[entries[i].MetadataRef]; ok {
			entries[i].Metadata = &m
		}
	}
	return entries
}
