package repository

import (
	"clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	// ResetDailyPoints zeroes every user's reward points and stamps the
	// reset date. Returns the number of rows touched.
	ResetDailyPoints(db *gorm.DB, dateKey string) (int64, error)
}
