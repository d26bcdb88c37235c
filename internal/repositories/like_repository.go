package repositories

import (
	"fmt"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(momentID string, userID uint) error
	HasUserLikedMoment(momentID string, userID uint) (bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	return r.db.Create(like).Error
}

// DeleteLike deletes a like from PostgreSQL
func (r *PostgresLikeRepository) DeleteLike(momentID string, userID uint) error {
	res := r.db.Where("moment_id = ? AND user_id = ?", momentID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like not found")
	}
	return nil
}

// HasUserLikedMoment checks if a user has liked a specific moment
func (r *PostgresLikeRepository) HasUserLikedMoment(momentID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Where("moment_id = ? AND user_id = ?", momentID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
