package repositories

import (
	"time"

	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the append-only log of
// raised notifications. It backs the in-app alert feed and the dedup and
// rate-limit queries made before a push goes out. The store enforces no
// uniqueness itself; callers dedup at the application layer.
type NotificationRepository interface {
	Create(notification *models.Notification) error
	// FindDuplicate returns an existing record with the same source, target
	// and kind, scoped to subjectKey when one is given. Returns nil when no
	// duplicate exists.
	FindDuplicate(sourceID, targetID uint, kind models.NotificationKind, subjectKey string) (*models.Notification, error)
	// CountRecentUnacknowledged counts unacknowledged records of one kind
	// (scoped to subjectKey when given) created at or after since.
	CountRecentUnacknowledged(targetID uint, kind models.NotificationKind, subjectKey string, since time.Time) (int64, error)
	// ListBefore returns up to limit records strictly older than before,
	// newest first.
	ListBefore(targetID uint, before time.Time, limit int) ([]models.Notification, error)
	CountForUser(targetID uint) (int64, error)
	// CountUnacknowledged is the recipient's badge count, unfiltered by kind.
	CountUnacknowledged(targetID uint) (int64, error)
	AcknowledgeAll(targetID uint) error
	DeleteBySubject(subjectKey string) error
	DeleteByID(id uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *postgresNotificationRepository) FindDuplicate(sourceID, targetID uint, kind models.NotificationKind, subjectKey string) (*models.Notification, error) {
	q := r.db.Where("source_id = ? AND target_id = ? AND kind = ?", sourceID, targetID, kind)
	if subjectKey != "" {
		q = q.Where("subject_key = ?", subjectKey)
	}

	var existing models.Notification
	err := q.Limit(1).Take(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *postgresNotificationRepository) CountRecentUnacknowledged(targetID uint, kind models.NotificationKind, subjectKey string, since time.Time) (int64, error) {
	q := r.db.Model(&models.Notification{}).
		Where("target_id = ? AND kind = ? AND acknowledged = false AND created_at >= ?", targetID, kind, since)
	if subjectKey != "" {
		q = q.Where("subject_key = ?", subjectKey)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) ListBefore(targetID uint, before time.Time, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("target_id = ? AND created_at < ?", targetID, before).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) CountForUser(targetID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("target_id = ?", targetID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) CountUnacknowledged(targetID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("target_id = ? AND acknowledged = false", targetID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) AcknowledgeAll(targetID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("target_id = ? AND acknowledged = false", targetID).
		Update("acknowledged", true).Error
}

func (r *postgresNotificationRepository) DeleteBySubject(subjectKey string) error {
	return r.db.Where("subject_key = ?", subjectKey).Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
