package dto

import "github.com/google/uuid"

// Request DTOs

type UpdateDoctorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// Response DTOs

type DoctorResponse struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Specialization string    `json:"specialization"`
	Biography      string    `json:"biography,omitempty"`
	HospitalName   string    `json:"hospital_name,omitempty"`
	City           string    `json:"city,omitempty"`

	// Today's queue, for the directory listing.
	QueueLength    int `json:"queue_length"`
	CurrentServing int `json:"current_serving"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
