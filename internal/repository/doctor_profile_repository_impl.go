package repository

import (
	"errors"

	"clinic-queue/internal/domain/entity"
	domainRepo "clinic-queue/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *doctorProfileRepository) FindApproved(db *gorm.DB) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	err := db.Preload("User").
		Where("status = ?", entity.DoctorStatusApproved).
		Order("specialization ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) UpdateStatus(db *gorm.DB, userID uuid.UUID, status entity.ApprovalStatus) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("user_id = ?", userID).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// AdvanceServing is a single guarded UPDATE so concurrent call-next presses
// can never produce a lost update or run the cursor past the issued count.
// A cursor stamped with an older date counts as zero and rolls over to 1.
func (r *doctorProfileRepository) AdvanceServing(db *gorm.DB, doctorID uuid.UUID, dateKey string) (int, bool, error) {
	type row struct {
		CurrentServing int
	}
	var rows []row
	err := db.Raw(`
		UPDATE doctor_profiles
		SET current_serving = CASE WHEN serving_date = ? THEN current_serving + 1 ELSE 1 END,
		    serving_date = ?
		WHERE user_id = ?
		  AND (CASE WHEN serving_date = ? THEN current_serving ELSE 0 END) < (
		      SELECT COUNT(*) FROM appointments
		      WHERE appointments.doctor_id = doctor_profiles.user_id
		        AND appointments.date = ?
		  )
		RETURNING current_serving
	`, dateKey, dateKey, doctorID, dateKey, dateKey).Scan(&rows).Error
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].CurrentServing, true, nil
}

func (r *doctorProfileRepository) ResetAllServing(db *gorm.DB) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("current_serving <> 0 OR serving_date <> ''").
		Updates(map[string]interface{}{
			"current_serving": 0,
			"serving_date":    "",
		})
	return result.RowsAffected, result.Error
}
