package metadata

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jeffreytso/contourdex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo keeps items in a map keyed by PK.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items   map[string]map[string]*dynamodb.AttributeValue
	batches []int
	fail    bool
}

func newFake() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]*dynamodb.AttributeValue)}
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.items[*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) BatchGetItemWithContext(_ aws.Context, in *dynamodb.BatchGetItemInput, _ ...request.Option) (*dynamodb.BatchGetItemOutput, error) {
	if f.fail {
		return nil, errors.New("throttled")
	}
	out := &dynamodb.BatchGetItemOutput{Responses: map[string][]map[string]*dynamodb.AttributeValue{}}
	for table, ka := range in.RequestItems {
		f.batches = append(f.batches, len(ka.Keys))
		for _, k := range ka.Keys {
			if it, ok := f.items[*k["PK"].S]; ok {
				out.Responses[table] = append(out.Responses[table], it)
			}
		}
	}
	return out, nil
}

func TestPutThenGet(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	d := NewDynamoWithClient(fake, "contourdex-metadata")

	m := model.Metadata{Title: "Gymnopédie 1", Composer: model.Composer{Name: "Erik Satie"}, Year: "1888"}
	require.NoError(t, d.Put(ctx, "satie/gymnopedie-1.ly", m))

	got, err := d.Get(ctx, []string{"satie/gymnopedie-1.ly", "missing.ly"})
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Metadata{"satie/gymnopedie-1.ly": m}, got)
}

func TestGetChunksRequests(t *testing.T) {
	fake := newFake()
	d := NewDynamoWithClient(fake, "t")

	refs := make([]string, 250)
	for i := range refs {
		refs[i] = fmt.Sprintf("%d.ly", i)
	}
	_, err := d.Get(context.Background(), refs)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, fake.batches)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	d := NewDynamoWithClient(fake, "t")
	require.NoError(t, d.Put(ctx, "a.ly", model.Metadata{Title: "A"}))

	preset := &model.Metadata{Title: "already here"}
	entries := []model.CorpusEntry{
		{ID: "1", MetadataRef: "a.ly"},
		{ID: "2", MetadataRef: "b.ly"},
		{ID: "3", MetadataRef: "a.ly", Metadata: preset},
		{ID: "4", MetadataRef: "a.ly"},
	}
	out := d.Resolve(ctx, entries)

	require.Len(t, out, 4)
	assert.Equal(t, "A", out[0].Metadata.Title)
	assert.Nil(t, out[1].Metadata)
	assert.Same(t, preset, out[2].Metadata)
	assert.Equal(t, "A", out[3].Metadata.Title)
	assert.Equal(t, []int{2}, fake.batches)
}

func TestResolveLookupFailure(t *testing.T) {
	fake := newFake()
	fake.fail = true
	d := NewDynamoWithClient(fake, "t")

	out := d.Resolve(context.Background(), []model.CorpusEntry{{ID: "1", MetadataRef: "a.ly"}})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Metadata)
}
