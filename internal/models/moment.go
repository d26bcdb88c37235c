package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moment represents a shared moment stored in MongoDB. Its hex object id is
// the subject key used to scope notification dedup and throttling.
type Moment struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID        uint               `json:"user_id" bson:"user_id"` // author
	Headline      string             `json:"headline" bson:"headline"`
	ImageKey      string             `json:"image_key,omitempty" bson:"image_key,omitempty"`
	LikesCount    int                `json:"likes_count" bson:"likes_count"`
	CommentsCount int                `json:"comments_count" bson:"comments_count"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// SubjectKey returns the correlation id notifications use for this moment.
func (m *Moment) SubjectKey() string {
	return m.ID.Hex()
}

// CreateMomentRequest defines the request body for creating a new moment.
type CreateMomentRequest struct {
	Headline string `json:"headline" validate:"required,min=1,max=280"`
	ImageKey string `json:"image_key,omitempty" validate:"omitempty,max=128"`
}
