package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/repository"
)

const (
	stockCollection    = "stackdatas"
	projectCollection  = "projects"
	productCollection  = "products"
	categoryCollection = "categories"
)

// MongoDBRepository implements the ledger store, site resolver and material
// catalog on top of the legacy stock documents.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", dbName))

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
		now:    time.Now,
	}, nil
}

var (
	_ repository.LedgerStore     = (*MongoDBRepository)(nil)
	_ repository.SiteResolver    = (*MongoDBRepository)(nil)
	_ repository.MaterialCatalog = (*MongoDBRepository)(nil)
)

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.db.Collection(name)
}

// objectID parses a hex id; malformed ids cannot match a stored record.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", repository.ErrNotFound, id)
	}
	return oid, nil
}
