package models

import "gorm.io/gorm"

// Like represents a like on a moment
type Like struct {
	gorm.Model
	MomentID string `json:"moment_id" gorm:"index"` // ID of the moment that was liked (MongoDB ObjectID as string)
	UserID   uint   `json:"user_id" gorm:"index"`   // ID of the user who liked the moment
}
