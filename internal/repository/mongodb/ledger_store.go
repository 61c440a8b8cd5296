package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

// GetLedger loads the ledger of a material from its site document.
func (r *MongoDBRepository) GetLedger(ctx context.Context, siteID, materialID string) (*models.MaterialLedger, error) {
	mid, err := objectID(materialID)
	if err != nil {
		return nil, err
	}

	doc, err := r.findSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	for _, entry := range doc.Type {
		if entry.MaterialID == mid {
			return decodeEntry(doc.SiteID, entry), nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetOrCreateLedger loads a ledger or returns a new unsaved one.
func (r *MongoDBRepository) GetOrCreateLedger(ctx context.Context, siteID, materialID string) (*models.MaterialLedger, models.LedgerOrigin, error) {
	ledger, err := r.GetLedger(ctx, siteID, materialID)
	switch {
	case err == nil:
		return ledger, models.OriginExisting, nil
	case errors.Is(err, repository.ErrNotFound):
		return &models.MaterialLedger{SiteID: siteID, MaterialID: materialID}, models.OriginCreated, nil
	default:
		return nil, "", err
	}
}

// UpsertLedger replaces the material entry in place, or pushes it onto the
// site document (creating the document) when the material is new. Each branch
// is a single-document update.
func (r *MongoDBRepository) UpsertLedger(ctx context.Context, ledger *models.MaterialLedger) error {
	sid, err := objectID(ledger.SiteID)
	if err != nil {
		return err
	}
	mid, err := objectID(ledger.MaterialID)
	if err != nil {
		return err
	}

	entryID := primitive.NewObjectID()
	if ledger.ID != "" {
		if parsed, err := primitive.ObjectIDFromHex(ledger.ID); err == nil {
			entryID = parsed
		}
	}

	doc := encodeEntry(ledger, entryID, mid)
	now := r.now().UTC()
	coll := r.collection(stockCollection)

	res, err := coll.UpdateOne(ctx,
		bson.M{"siteId": sid, "type.materialId": mid},
		bson.M{"$set": bson.M{"type.$": doc, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("update stock entry: %w", err)
	}

	if res.MatchedCount == 0 {
		_, err = coll.UpdateOne(ctx,
			bson.M{"siteId": sid},
			bson.M{
				"$push":        bson.M{"type": doc},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("push stock entry: %w", err)
		}
		r.logger.Debug("stock entry created", zap.String("site_id", ledger.SiteID), zap.String("material_id", ledger.MaterialID))
	}

	ledger.ID = entryID.Hex()
	return nil
}

// GetSiteLedger loads the stock document of a site.
func (r *MongoDBRepository) GetSiteLedger(ctx context.Context, siteID string) (*models.SiteLedger, error) {
	doc, err := r.findSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return decodeSite(*doc), nil
}

// ListSiteLedgers loads every stock document.
func (r *MongoDBRepository) ListSiteLedgers(ctx context.Context) ([]models.SiteLedger, error) {
	cursor, err := r.collection(stockCollection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find stock documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []stackDataDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode stock documents: %w", err)
	}

	out := make([]models.SiteLedger, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *decodeSite(doc))
	}
	return out, nil
}

func (r *MongoDBRepository) findSite(ctx context.Context, siteID string) (*stackDataDoc, error) {
	sid, err := objectID(siteID)
	if err != nil {
		return nil, err
	}

	var doc stackDataDoc
	err = r.collection(stockCollection).FindOne(ctx, bson.M{"siteId": sid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find stock document for site %s: %w", siteID, err)
	}
	return &doc, nil
}
