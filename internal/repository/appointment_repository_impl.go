package repository

import (
	"errors"

	"clinic-queue/internal/domain/entity"
	domainRepo "clinic-queue/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) CountByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, dateKey string) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ? AND date = ?", doctorID, dateKey).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) MaxTokenByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, dateKey string) (int, error) {
	var max int
	err := db.Model(&entity.Appointment{}).
		Select("COALESCE(MAX(token_number), 0)").
		Where("doctor_id = ? AND date = ?", doctorID, dateKey).
		Scan(&max).Error
	return max, err
}

func (r *appointmentRepository) TokenMaxima(db *gorm.DB, dateKey string) ([]domainRepo.TokenMax, error) {
	var maxima []domainRepo.TokenMax
	err := db.Model(&entity.Appointment{}).
		Select("doctor_id, MAX(token_number) as max_token").
		Where("date = ?", dateKey).
		Group("doctor_id").
		Scan(&maxima).Error
	if err != nil {
		return nil, err
	}
	return maxima, nil
}

func (r *appointmentRepository) FindByCheckInCode(db *gorm.DB, code string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("check_in_code = ?", code).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) MarkCheckedIn(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusBooked).
		Update("status", entity.AppointmentStatusCheckedIn)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) FindLatestByPatientAndDate(db *gorm.DB, patientID uuid.UUID, dateKey string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("patient_id = ? AND date = ?", patientID, dateKey).
		Order("created_at DESC").
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, dateKey string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND date = ?", doctorID, dateKey).
		Order("token_number ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}
