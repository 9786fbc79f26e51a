package repository

import (
	"clinic-queue/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenMax is the highest issued token for one (doctor, date) pair.
type TokenMax struct {
	DoctorID uuid.UUID
	MaxToken int
}

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	CountByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, dateKey string) (int64, error)
	MaxTokenByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, dateKey string) (int, error)
	// TokenMaxima returns the highest issued token per doctor for one date,
	// used to prime the Redis counters at startup.
	TokenMaxima(db *gorm.DB, dateKey string) ([]TokenMax, error)
	FindByCheckInCode(db *gorm.DB, code string) (*entity.Appointment, error)
	// MarkCheckedIn transitions a booked appointment to checked-in, guarded
	// by the current status so concurrent scans cannot double-apply.
	// Returns affected rows: 1 = transitioned, 0 = not booked anymore.
	MarkCheckedIn(db *gorm.DB, id uuid.UUID) (int64, error)
	FindLatestByPatientAndDate(db *gorm.DB, patientID uuid.UUID, dateKey string) (*entity.Appointment, error)
	ListByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, dateKey string) ([]entity.Appointment, error)
}
