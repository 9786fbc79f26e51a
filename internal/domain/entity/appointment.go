package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCheckedIn AppointmentStatus = "checked_in"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusSkipped   AppointmentStatus = "skipped"
)

// Appointment represents one booked clinic visit. Token numbers form a dense
// 1..N sequence per (doctor, date) enforced by a composite unique index; the
// index doubles as the backstop for the allocation retry loop.
type Appointment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_appointments_doctor_date_token,priority:1;index" json:"doctor_id"`
	PatientID   uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientName string    `gorm:"type:varchar(255);not null" json:"patient_name"`
	PhoneNumber string    `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	Problem     string    `gorm:"type:text" json:"problem,omitempty"`

	// Calendar-day date key (YYYY-MM-DD), timezone-naive by design.
	Date string `gorm:"type:varchar(10);not null;uniqueIndex:idx_appointments_doctor_date_token,priority:2;index" json:"date"`

	TokenNumber int               `gorm:"not null;uniqueIndex:idx_appointments_doctor_date_token,priority:3" json:"token_number"`
	CheckInCode string            `gorm:"type:varchar(120);uniqueIndex;not null" json:"check_in_code"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'booked';index" json:"status"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) IsBooked() bool {
	return a.Status == AppointmentStatusBooked
}

func (a *Appointment) IsCheckedIn() bool {
	return a.Status == AppointmentStatusCheckedIn
}
