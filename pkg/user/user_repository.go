package user

import (
	"context"
	"flavorpal-backend/entities"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		GetHealthFlags(ctx context.Context, userID uuid.UUID) ([]*entities.HealthFlag, error)
		ReplaceHealthFlags(ctx context.Context, userID uuid.UUID, flags []*entities.HealthFlag) error
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetHealthFlags(ctx context.Context, userID uuid.UUID) ([]*entities.HealthFlag, error) {
	var flags []*entities.HealthFlag
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&flags).Error; err != nil {
		return nil, err
	}
	return flags, nil
}

func (r *userRepository) ReplaceHealthFlags(ctx context.Context, userID uuid.UUID, flags []*entities.HealthFlag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entities.HealthFlag{}).Error; err != nil {
			return err
		}
		if len(flags) == 0 {
			return nil
		}
		return tx.Create(&flags).Error
	})
}
