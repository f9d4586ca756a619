// Package menutypes provides storage for menu type records.
package menutypes

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/stratacms/internal/domain/models"
)

// Store provides access to the menu_types collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new menu type store.
func New(db *mongo.Database) *Store {
	return &Store{
		c: db.Collection("menu_types"),
	}
}

// Create creates a new menu type.
func (s *Store) Create(ctx context.Context, name string) (*models.MenuType, error) {
	now := time.Now()
	mt := models.MenuType{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, mt); err != nil {
		return nil, err
	}

	return &mt, nil
}

// GetByID retrieves a menu type by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.MenuType, error) {
	var mt models.MenuType
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&mt); err != nil {
		return nil, err
	}
	return &mt, nil
}

// List returns all menu types sorted by name.
func (s *Store) List(ctx context.Context) ([]models.MenuType, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})

	cursor, err := s.c.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var menuTypes []models.MenuType
	if err := cursor.All(ctx, &menuTypes); err != nil {
		return nil, err
	}

	return menuTypes, nil
}

// Update renames a menu type.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name string) error {
	set := bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now(),
	}

	result, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete deletes a menu type.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// NameExists checks if a menu type with the given name exists.
// The comparison is case-insensitive. Pass excludeID to exclude a specific
// menu type (useful for renames).
func (s *Store) NameExists(ctx context.Context, name string, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{"name_ci": text.Fold(name)}

	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Count returns the total number of menu types.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
