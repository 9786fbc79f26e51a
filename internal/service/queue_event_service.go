package service

import (
	"context"

	"clinic-queue/internal/domain/repository"
	"clinic-queue/internal/hub"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QueueEventService turns queue mutations into queue.updated broadcasts.
// The snapshot is always re-read from storage after the mutation that
// triggered it, so a subscriber can never observe the cursor moving
// backwards; deltas are never broadcast.
type QueueEventService struct {
	log        *logrus.Logger
	doctorRepo repository.DoctorProfileRepository
	apptRepo   repository.AppointmentRepository
	hub        *hub.Hub
}

func NewQueueEventService(log *logrus.Logger, doctorRepo repository.DoctorProfileRepository, apptRepo repository.AppointmentRepository, h *hub.Hub) *QueueEventService {
	return &QueueEventService{
		log:        log,
		doctorRepo: doctorRepo,
		apptRepo:   apptRepo,
		hub:        h,
	}
}

// PublishUpdated recomputes and fans out the doctor's queue snapshot.
// Broadcast failures only cost the delivery, never the request; errors are
// logged and swallowed.
func (s *QueueEventService) PublishUpdated(ctx context.Context, db *gorm.DB, doctorID uuid.UUID, dateKey string) {
	doctor, err := s.doctorRepo.FindByUserID(db.WithContext(ctx), doctorID)
	if err != nil || doctor == nil {
		s.log.Warnf("Skipping queue broadcast for doctor %s: %+v", doctorID, err)
		return
	}

	total, err := s.apptRepo.CountByDoctorAndDate(db.WithContext(ctx), doctorID, dateKey)
	if err != nil {
		s.log.Warnf("Skipping queue broadcast for doctor %s: %+v", doctorID, err)
		return
	}

	current := doctor.ServingFor(dateKey)
	remaining := int(total) - current
	if remaining < 0 {
		remaining = 0
	}

	s.hub.PublishQueue(doctorID.String(), hub.Marshal(hub.QueueUpdatedEvent{
		Type:           hub.EventQueueUpdated,
		DoctorID:       doctorID.String(),
		CurrentServing: current,
		TotalIssued:    int(total),
		Remaining:      remaining,
	}))
}
