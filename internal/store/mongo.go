package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// mongoNogo is the stored document: { _id, type: "LineString", coordinates }.
type mongoNogo struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Type        string        `bson:"type"`
	Coordinates [][]float64   `bson:"coordinates"`
}

// MongoRepository keeps one document per nogo in a mongo collection.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// ConnectMongo opens a client and verifies the server answers before
// returning, so a bad URI fails at startup.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*MongoRepository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoRepository{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Nogo, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing nogos: %w", err)
	}
	var docs []mongoNogo
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading nogos: %w", err)
	}

	nogos := make([]models.Nogo, 0, len(docs))
	for _, doc := range docs {
		ls, err := geo.NewLineString(doc.Coordinates)
		if err != nil {
			logrus.WithError(err).WithField("nogo_id", doc.ID.Hex()).Warn("skipping malformed nogo document")
			continue
		}
		nogos = append(nogos, models.Nogo{ID: doc.ID.Hex(), Geometry: ls})
	}
	return nogos, nil
}

func (r *MongoRepository) Create(ctx context.Context, ls *geom.LineString) (string, error) {
	res, err := r.coll.InsertOne(ctx, mongoNogo{
		Type:        models.NogoType,
		Coordinates: geo.Coordinates(ls),
	})
	if err != nil {
		return "", fmt.Errorf("inserting nogo: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("deleting nogo %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
