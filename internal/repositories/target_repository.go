package repositories

import (
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"gorm.io/gorm"
)

// TargetRepository defines the interface for push target persistence. The
// query shapes mirror what the target registry's reconciliation needs: the
// union of rows matching either the new device or the registering credential.
type TargetRepository interface {
	Create(target *models.NotificationTarget) error
	Save(target *models.NotificationTarget) error
	// FindByDeviceOrCredential returns every target matching either field.
	FindByDeviceOrCredential(deviceID, credentialID string) ([]models.NotificationTarget, error)
	// FindByCredential returns the target bound to a credential, or nil.
	FindByCredential(credentialID string) (*models.NotificationTarget, error)
	FindByUser(userID uint) ([]models.NotificationTarget, error)
	DeleteByIDs(ids []uint) error
}

type postgresTargetRepository struct {
	db *gorm.DB
}

func NewPostgresTargetRepository(db *gorm.DB) TargetRepository {
	return &postgresTargetRepository{db: db}
}

func (r *postgresTargetRepository) Create(target *models.NotificationTarget) error {
	return r.db.Create(target).Error
}

func (r *postgresTargetRepository) Save(target *models.NotificationTarget) error {
	return r.db.Save(target).Error
}

func (r *postgresTargetRepository) FindByDeviceOrCredential(deviceID, credentialID string) ([]models.NotificationTarget, error) {
	var targets []models.NotificationTarget
	err := r.db.Where("device_id = ? OR credential_id = ?", deviceID, credentialID).Find(&targets).Error
	return targets, err
}

func (r *postgresTargetRepository) FindByCredential(credentialID string) (*models.NotificationTarget, error) {
	var target models.NotificationTarget
	err := r.db.Where("credential_id = ?", credentialID).Take(&target).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *postgresTargetRepository) FindByUser(userID uint) ([]models.NotificationTarget, error) {
	var targets []models.NotificationTarget
	err := r.db.Where("user_id = ?", userID).Find(&targets).Error
	return targets, err
}

func (r *postgresTargetRepository) DeleteByIDs(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Delete(&models.NotificationTarget{}, ids).Error
}
