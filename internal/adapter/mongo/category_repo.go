package mongo

import (
	"context"
	"fmt"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/domain/entity"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type categoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) repository.CategoryRepository {
	return &categoryRepository{collection: db.Collection(categoriesCollection)}
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*entity.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*categoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	categories := make([]*entity.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, toDomainCategory(d))
	}
	return categories, nil
}
