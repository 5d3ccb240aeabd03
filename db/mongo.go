package db

import (
	"context"
	"regexp"
	"time"

	"github.com/jeffreytso/contourdex/index"
	"github.com/jeffreytso/contourdex/model"
	"github.com/mdobak/go-xerrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultMongoDatabase = "contourdex"
	mongoCollection      = "compositions"
)

// Mongo keeps one document per entry in the compositions collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri. The database is taken from the uri path and
// defaults to contourdex.
func OpenMongo(ctx context.Context, uri string) (*Mongo, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, xerrors.New("parse mongo uri", err)
	}
	database := cs.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, xerrors.New("connect to mongo", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, xerrors.New("ping mongo", err)
	}

	return &Mongo{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

func (m *Mongo) Insert(ctx context.Context, e model.CorpusEntry) error {
	if _, err := m.coll.InsertOne(ctx, e); err != nil {
		return xerrors.New("insert entry "+e.ID, err)
	}
	return nil
}

func (m *Mongo) Clear(ctx context.Context) error {
	if _, err := m.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return xerrors.New("clear compositions", err)
	}
	return nil
}

// Query uses $regex since it is the only substring primitive Mongo has;
// the needle is escaped so it still matches literally.
func (m *Mongo) Query(ctx context.Context, pattern string, limit int) ([]model.CorpusEntry, error) {
	res := []model.CorpusEntry{}
	if index.Empty(pattern, limit) {
		return res, nil
	}

	filter := bson.M{
		"melodic_contour": bson.M{
			"$regex":   regexp.QuoteMeta(index.Sanitize(pattern)),
			"$options": "i",
		},
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "$natural", Value: 1}})

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, xerrors.New("find compositions", err)
	}
	if err := cur.All(ctx, &res); err != nil {
		return nil, xerrors.New("decode compositions", err)
	}
	return res, nil
}

func (m *Mongo) Count(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, xerrors.New("count compositions", err)
	}
	return int(n), nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
