package repository

import (
	"clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindApproved(db *gorm.DB) ([]entity.DoctorProfile, error)
	UpdateStatus(db *gorm.DB, userID uuid.UUID, status entity.ApprovalStatus) (int64, error)

	// AdvanceServing atomically bumps the doctor's cursor for the given date
	// key, rolling a stale cross-day cursor over to 1 and refusing to move
	// past the day's issued token count. Returns (newValue, true) when the
	// cursor moved and (0, false) when the update was a clamped no-op.
	AdvanceServing(db *gorm.DB, doctorID uuid.UUID, dateKey string) (int, bool, error)

	// ResetAllServing zeroes every doctor's cursor.
	ResetAllServing(db *gorm.DB) (int64, error)
}
