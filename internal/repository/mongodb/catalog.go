package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/repository"
)

// ResolveSite loads a project by id.
func (r *MongoDBRepository) ResolveSite(ctx context.Context, siteID string) (*models.Site, error) {
	oid, err := objectID(siteID)
	if err != nil {
		return nil, err
	}

	var doc projectDoc
	err = r.collection(projectCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", siteID, err)
	}

	return &models.Site{ID: doc.ID.Hex(), Name: doc.Name}, nil
}

// ResolveMaterial loads a product and the names of its categories.
func (r *MongoDBRepository) ResolveMaterial(ctx context.Context, materialID string) (*models.Material, error) {
	oid, err := objectID(materialID)
	if err != nil {
		return nil, err
	}

	var doc productDoc
	err = r.collection(productCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", materialID, err)
	}

	material := &models.Material{ID: doc.ID.Hex(), Name: doc.Name, Unit: doc.Unit}
	if len(doc.Categories) == 0 {
		return material, nil
	}

	cursor, err := r.collection(categoryCollection).Find(ctx, bson.M{"_id": bson.M{"$in": doc.Categories}})
	if err != nil {
		return nil, fmt.Errorf("find categories of product %s: %w", materialID, err)
	}
	defer cursor.Close(ctx)

	var categories []categoryDoc
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode categories of product %s: %w", materialID, err)
	}
	for _, c := range categories {
		material.Categories = append(material.Categories, c.Name)
	}

	return material, nil
}
