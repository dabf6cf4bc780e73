package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const productsCollection = "products"

type MongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{
		collection: db.Collection(productsCollection),
	}
}

// productFilter builds the listing filter. A concrete category takes
// priority over the excluded list; "All" means no category filter.
func productFilter(q domain.ProductQuery) bson.M {
	filter := bson.M{}

	if q.Category != "" && q.Category != domain.CategoryAll {
		filter["category"] = q.Category
	} else if len(q.ExcludedCategories) > 0 {
		filter["category"] = bson.M{"$nin": q.ExcludedCategories}
	}

	if q.BestSellerOnly {
		filter["bestSeller"] = true
	}

	return filter
}

func (m *MongoProductRepository) ListProducts(ctx context.Context, query domain.ProductQuery) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := m.collection.Find(ctx, productFilter(query), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]*domain.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (m *MongoProductRepository) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	oid, ok := id.ObjectID()
	if !ok {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	err := m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// GetProductsByIDs resolves ids in one query. Ids that are not ObjectIDs or
// match no product are missing from the result.
func (m *MongoProductRepository) GetProductsByIDs(ctx context.Context, ids []domain.ProductID) (map[domain.ProductID]*domain.Product, error) {
	result := make(map[domain.ProductID]*domain.Product, len(ids))

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := id.ObjectID(); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return result, nil
	}

	cursor, err := m.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	for _, p := range products {
		result[p.ProductID()] = p
	}
	return result, nil
}
