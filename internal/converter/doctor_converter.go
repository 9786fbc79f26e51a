package converter

import (
	"clinic-queue/internal/delivery/dto"
	"clinic-queue/internal/domain/entity"
)

// DoctorToResponse builds a directory entry. queueLength and currentServing
// come from the caller since they are date-scoped.
func DoctorToResponse(profile *entity.DoctorProfile, queueLength, currentServing int) *dto.DoctorResponse {
	if profile == nil {
		return nil
	}
	return &dto.DoctorResponse{
		ID:             profile.UserID,
		FullName:       profile.User.FullName,
		Specialization: profile.Specialization,
		Biography:      profile.Biography,
		HospitalName:   profile.HospitalName,
		City:           profile.City,
		QueueLength:    queueLength,
		CurrentServing: currentServing,
	}
}

func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		Points:    user.Points,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
