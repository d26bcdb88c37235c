package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MomentRepository defines the interface for moment data operations
type MomentRepository interface {
	CreateMoment(ctx context.Context, moment *models.Moment) error
	GetMomentByID(ctx context.Context, id string) (*models.Moment, error)
	DeleteMoment(ctx context.Context, id string) error
	IncrementLikesCount(ctx context.Context, momentID string) error
	DecrementLikesCount(ctx context.Context, momentID string) error
	IncrementCommentsCount(ctx context.Context, momentID string) error
}

// MongoMomentRepository implements MomentRepository for MongoDB
type MongoMomentRepository struct {
	collection *mongo.Collection
}

// NewMongoMomentRepository creates a new MongoMomentRepository
func NewMongoMomentRepository(db *mongo.Database) *MongoMomentRepository {
	return &MongoMomentRepository{collection: db.Collection("moments")}
}

// CreateMoment creates a new moment in MongoDB
func (r *MongoMomentRepository) CreateMoment(ctx context.Context, moment *models.Moment) error {
	moment.ID = primitive.NewObjectID()
	moment.CreatedAt = time.Now()
	moment.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, moment)
	return err
}

// GetMomentByID retrieves a moment by ID from MongoDB
func (r *MongoMomentRepository) GetMomentByID(ctx context.Context, id string) (*models.Moment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid moment ID format: %w", err)
	}

	var moment models.Moment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&moment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("moment not found")
		}
		return nil, err
	}
	return &moment, nil
}

// DeleteMoment deletes a moment by ID from MongoDB
func (r *MongoMomentRepository) DeleteMoment(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid moment ID format: %w", err)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("moment not found")
	}
	return nil
}

// IncrementLikesCount increments the likes counter on a moment
func (r *MongoMomentRepository) IncrementLikesCount(ctx context.Context, momentID string) error {
	return r.adjustCounter(ctx, momentID, "likes_count", 1)
}

// DecrementLikesCount decrements the likes counter on a moment
func (r *MongoMomentRepository) DecrementLikesCount(ctx context.Context, momentID string) error {
	return r.adjustCounter(ctx, momentID, "likes_count", -1)
}

// IncrementCommentsCount increments the comments counter on a moment
func (r *MongoMomentRepository) IncrementCommentsCount(ctx context.Context, momentID string) error {
	return r.adjustCounter(ctx, momentID, "comments_count", 1)
}

func (r *MongoMomentRepository) adjustCounter(ctx context.Context, momentID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(momentID)
	if err != nil {
		return fmt.Errorf("invalid moment ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}
