package converter

import (
	"clinic-queue/internal/delivery/dto"
	"clinic-queue/internal/domain/entity"
)

// BookingToResponse converts an Appointment entity to the booking DTO the
// patient receives, check-in code included.
func BookingToResponse(appointment *entity.Appointment) *dto.BookingResponse {
	if appointment == nil {
		return nil
	}
	return &dto.BookingResponse{
		ID:          appointment.ID,
		DoctorID:    appointment.DoctorID,
		PatientID:   appointment.PatientID,
		PatientName: appointment.PatientName,
		Date:        appointment.Date,
		TokenNumber: appointment.TokenNumber,
		CheckInCode: appointment.CheckInCode,
		Status:      string(appointment.Status),
		CreatedAt:   appointment.CreatedAt,
	}
}

// AppointmentToResponse converts an Appointment for the doctor-facing list;
// the check-in code stays out of it.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}
	return &dto.AppointmentResponse{
		ID:          appointment.ID,
		PatientName: appointment.PatientName,
		PhoneNumber: appointment.PhoneNumber,
		Problem:     appointment.Problem,
		Date:        appointment.Date,
		TokenNumber: appointment.TokenNumber,
		Status:      string(appointment.Status),
		CreatedAt:   appointment.CreatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
