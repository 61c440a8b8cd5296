package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

var fixedNow = time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)

func mockRepository(mt *mtest.T) *MongoDBRepository {
	return &MongoDBRepository{
		client: mt.Client,
		db:     mt.DB,
		logger: zap.NewNop(),
		now:    func() time.Time { return fixedNow },
	}
}

func sampleLedger(siteID, materialID primitive.ObjectID) *models.MaterialLedger {
	return &models.MaterialLedger{
		SiteID:     siteID.Hex(),
		MaterialID: materialID.Hex(),
		Transactions: []models.Transaction{
			{Date: fixedNow, Kind: models.KindInbound, Inbound: decimal.NewFromInt(100), RunningStock: decimal.NewFromInt(100), Description: "delivery"},
		},
	}
}

func updateResponse(matched int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: matched}, bson.E{Key: "nModified", Value: matched})
}

func TestUpsertLedger(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing material is replaced in place", func(mt *mtest.T) {
		repo := mockRepository(mt)
		siteID, materialID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(updateResponse(1))

		ledger := sampleLedger(siteID, materialID)
		require.NoError(mt, repo.UpsertLedger(context.Background(), ledger))
		assert.NotEmpty(mt, ledger.ID)

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 1)
		cmd := events[0].Command

		filter := cmd.Lookup("updates", "0", "q")
		assert.Equal(mt, siteID, filter.Document().Lookup("siteId").ObjectID())
		assert.Equal(mt, materialID, filter.Document().Lookup("type.materialId").ObjectID())

		entry := cmd.Lookup("updates", "0", "u", "$set", "type.$").Document()
		assert.Equal(mt, ledger.ID, entry.Lookup("_id").ObjectID().Hex())
		stock, err := entry.Lookup("Stock").Array().Values()
		require.NoError(mt, err)
		require.Len(mt, stock, 1)
		assert.Equal(mt, float64(100), stock[0].Double())
	})

	mt.Run("new material is pushed with upsert", func(mt *mtest.T) {
		repo := mockRepository(mt)
		siteID, materialID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(updateResponse(0), updateResponse(1))

		ledger := sampleLedger(siteID, materialID)
		require.NoError(mt, repo.UpsertLedger(context.Background(), ledger))

		events := mt.GetAllStartedEvents()
		require.Len(mt, events, 2)
		push := events[1].Command

		assert.Equal(mt, siteID, push.Lookup("updates", "0", "q", "siteId").ObjectID())
		assert.True(mt, push.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, materialID, push.Lookup("updates", "0", "u", "$push", "type", "materialId").ObjectID())
		assert.True(mt, fixedNow.Equal(push.Lookup("updates", "0", "u", "$setOnInsert", "createdAt").Time()))
		assert.True(mt, fixedNow.Equal(push.Lookup("updates", "0", "u", "$set", "updatedAt").Time()))
	})

	mt.Run("pending repair is written with the entry", func(mt *mtest.T) {
		repo := mockRepository(mt)
		mt.AddMockResponses(updateResponse(1))

		ledger := sampleLedger(primitive.NewObjectID(), primitive.NewObjectID())
		ledger.Inconsistent = true
		require.NoError(mt, repo.UpsertLedger(context.Background(), ledger))

		assert.True(mt, ledger.Inconsistent)
		cmd := mt.GetStartedEvent().Command
		assert.True(mt, cmd.Lookup("updates", "0", "u", "$set", "type.$", "needsRepair").Boolean())
	})

	mt.Run("write errors are wrapped", func(mt *mtest.T) {
		repo := mockRepository(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.UpsertLedger(context.Background(), sampleLedger(primitive.NewObjectID(), primitive.NewObjectID()))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "update stock entry")
	})

	mt.Run("malformed ids match nothing", func(mt *mtest.T) {
		repo := mockRepository(mt)

		err := repo.UpsertLedger(context.Background(), &models.MaterialLedger{SiteID: "bad", MaterialID: primitive.NewObjectID().Hex()})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
		assert.Empty(mt, mt.GetAllStartedEvents())
	})
}

func TestGetLedger(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes the matching material", func(mt *mtest.T) {
		repo := mockRepository(mt)
		siteID, materialID := primitive.NewObjectID(), primitive.NewObjectID()
		site := bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "siteId", Value: siteID},
			{Key: "type", Value: bson.A{
				bson.D{
					{Key: "materialId", Value: materialID},
					{Key: "description", Value: bson.A{"delivery", "slab"}},
					{Key: "values", Value: bson.A{0.0, 0.0}},
					{Key: "Stock", Value: bson.A{100.0, 70.0}},
					{Key: "inbound", Value: bson.A{100.0, 0.0}},
					{Key: "outbound", Value: bson.A{0.0, 30.0}},
					{Key: "date", Value: bson.A{fixedNow, fixedNow.Add(time.Hour)}},
				},
			}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test."+stockCollection, mtest.FirstBatch, site))

		ledger, err := repo.GetLedger(context.Background(), siteID.Hex(), materialID.Hex())
		require.NoError(mt, err)
		assert.False(mt, ledger.Inconsistent)
		require.Equal(mt, 2, ledger.Len())
		assert.True(mt, ledger.LastStock().Equal(decimal.NewFromInt(70)))
	})

	mt.Run("missing site is not found", func(mt *mtest.T) {
		repo := mockRepository(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test."+stockCollection, mtest.FirstBatch))

		_, err := repo.GetLedger(context.Background(), primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}
