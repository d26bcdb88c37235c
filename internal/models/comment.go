package models

import "gorm.io/gorm"

// Comment represents a comment on a moment
type Comment struct {
	gorm.Model
	MomentID string `json:"moment_id" gorm:"index"` // ID of the moment the comment belongs to (MongoDB ObjectID as string)
	UserID   uint   `json:"user_id" gorm:"index"`   // ID of the user who made the comment
	Content  string `json:"content" validate:"required,min=1,max=500"`
}

// CreateCommentRequest defines the request body for creating a new comment.
// The moment id comes from the route path.
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
