package dto

import "github.com/google/uuid"

// QueueSnapshotResponse is the point-in-time state of one doctor's queue.
// Remaining is always max(total - current, 0).
type QueueSnapshotResponse struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	Date           string    `json:"date"`
	CurrentServing int       `json:"current_serving"`
	TotalIssued    int       `json:"total_issued"`
	Remaining      int       `json:"remaining"`
}
