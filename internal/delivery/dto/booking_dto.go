package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateBookingRequest struct {
	DoctorID     uuid.UUID `json:"doctor_id" validate:"required"`
	Date         string    `json:"date" validate:"required,datekey"`
	PatientName  string    `json:"patient_name" validate:"required,min=2,max=255"`
	PhoneNumber  string    `json:"phone_number" validate:"required,min=7,max=20"`
	Problem      string    `json:"problem" validate:"max=2000"`
	PatientEmail string    `json:"patient_email" validate:"omitempty,email"`
}

type CheckInRequest struct {
	Code string `json:"code" validate:"required,max=120"`
}

// Response DTOs

type BookingResponse struct {
	ID          uuid.UUID `json:"id"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	PatientID   uuid.UUID `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	Date        string    `json:"date"`
	TokenNumber int       `json:"token_number"`
	CheckInCode string    `json:"check_in_code"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type CheckInResponse struct {
	PatientName string `json:"patient_name"`
	TokenNumber int    `json:"token_number"`
}

type AppointmentResponse struct {
	ID          uuid.UUID `json:"id"`
	PatientName string    `json:"patient_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Problem     string    `json:"problem,omitempty"`
	Date        string    `json:"date"`
	TokenNumber int       `json:"token_number"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
